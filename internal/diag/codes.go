package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// configuration
	CfgInfo              Code = 1000
	CfgInvalid           Code = 1001
	CfgInvalidDefine     Code = 1002
	CfgConflictingInject Code = 1003
	CfgBadPattern        Code = 1004
	CfgNoEntries         Code = 1005

	// syntax
	SynInfo       Code = 2000
	SynParseError Code = 2001

	// resolution
	ResInfo       Code = 3000
	ResUnresolved Code = 3001

	// graph
	GraphInfo            Code = 4000
	GraphModuleNotFound  Code = 4001
	GraphDuplicateModule Code = 4002
	GraphCycle           Code = 4003

	// io
	IOLoadFileError Code = 5001
	IOCacheError    Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	CfgInfo:              "Configuration information",
	CfgInvalid:           "Invalid configuration",
	CfgInvalidDefine:     "Define value is not an expression",
	CfgConflictingInject: "Inject rule has conflicting selectors",
	CfgBadPattern:        "Invalid pattern",
	CfgNoEntries:         "No entry modules",
	SynInfo:              "Syntax information",
	SynParseError:        "Syntax error",
	ResInfo:              "Resolution information",
	ResUnresolved:        "Cannot resolve module",
	GraphInfo:            "Graph information",
	GraphModuleNotFound:  "Module not found in graph",
	GraphDuplicateModule: "Module added twice",
	GraphCycle:           "Circular dependency",
	IOLoadFileError:      "I/O load file error",
	IOCacheError:         "Cache error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GRF%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
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
