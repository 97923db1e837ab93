package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Обнаружение деклараций
	ScanInfo             Code = 1000
	ScanDirectiveInvalid Code = 1001
	ScanPackageError     Code = 1002
	ScanManifestInvalid  Code = 1003

	// Генерация
	GenInfo                         Code = 2000
	GenMissingBindRoutine           Code = 2001
	GenInsufficientRoleBinding      Code = 2002
	GenMalformedContainerAnnotation Code = 2003
	GenDuplicateTagName             Code = 2004
	GenRenderFailed                 Code = 2005

	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	CfgInfo         Code = 5000
	CfgInvalidValue Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                     "Unknown error",
		ScanInfo:                        "Discovery information",
		ScanDirectiveInvalid:            "Invalid bindsadapter directive",
		ScanPackageError:                "Package could not be loaded",
		ScanManifestInvalid:             "Invalid declaration manifest",
		GenInfo:                         "Generation information",
		GenMissingBindRoutine:           "Variant has no single bind routine",
		GenInsufficientRoleBinding:      "Not enough role bindings for routine parameters",
		GenMalformedContainerAnnotation: "Malformed container variant list",
		GenDuplicateTagName:             "Two variants map to the same tag",
		GenRenderFailed:                 "Generated code could not be rendered",
		IOLoadFileError:                 "I/O load file error",
		IOWriteFileError:                "I/O write file error",
		CfgInfo:                         "Configuration information",
		CfgInvalidValue:                 "Invalid configuration value",
		ObsInfo:                         "Observability information",
		ObsTimings:                      "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
