package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// I/O and decoding
	IOReadFailed    Code = 1001
	IODecodeFailed  Code = 1002
	IOSchemaVersion Code = 1003
	IOWriteFailed   Code = 1004

	// Well-formedness, one code per rule family
	WFProgram    Code = 2001
	WFFunction   Code = 2002
	WFType       Code = 2003
	WFStatement  Code = 2004
	WFPlace      Code = 2005
	WFValue      Code = 2006
	WFTerminator Code = 2007
	WFBlockKind  Code = 2008

	// Configuration
	CfgParseFailed Code = 3001
	CfgInvalid     Code = 3002
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	IOReadFailed:    "Cannot read program file",
	IODecodeFailed:  "Cannot decode program file",
	IOSchemaVersion: "Unsupported program file version",
	IOWriteFailed:   "Cannot write program file",
	WFProgram:       "Ill-formed program",
	WFFunction:      "Ill-formed function",
	WFType:          "Ill-formed type",
	WFStatement:     "Ill-formed statement",
	WFPlace:         "Ill-formed place expression",
	WFValue:         "Ill-formed value expression",
	WFTerminator:    "Ill-formed terminator",
	WFBlockKind:     "Block kind violation",
	CfgParseFailed:  "Cannot parse configuration",
	CfgInvalid:      "Invalid configuration",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("WF%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CFG%04d", ic)
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
