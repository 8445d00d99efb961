package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Метки и переходы
	LblInfo              Code = 1000
	LblUnboundBreak      Code = 1001
	LblUnboundContinue   Code = 1002
	LblContinueNotLoop   Code = 1003
	LblDuplicateLabel    Code = 1004
	LblReservedLabelName Code = 1005

	// Контекстные маркеры
	CtxInfo                    Code = 2000
	CtxAwaitOutsideAsync       Code = 2001
	CtxYieldOutsideGenerator   Code = 2002
	CtxSuperCallOutsideCtor    Code = 2003
	CtxSuperMemberOutsideMeth  Code = 2004
	CtxNewTargetOutsideFunc    Code = 2005
	CtxReturnOutsideFunc       Code = 2006
	CtxImportMetaOutsideModule Code = 2007
	CtxModuleDeclOutsideModule Code = 2008
	CtxAwaitInParams           Code = 2009
	CtxYieldInParams           Code = 2010
	CtxArgumentsInClassInit    Code = 2011
	CtxUnresolvedPrivateName   Code = 2012
	CtxForAwaitOutsideAsync    Code = 2013

	// Привязки имён
	BndInfo               Code = 3000
	BndDuplicateBinding   Code = 3001
	BndDuplicateParam     Code = 3002
	BndLetName            Code = 3003
	BndDuplicateExport    Code = 3004
	BndUndeclaredExport   Code = 3005
	BndDuplicatePrivate   Code = 3006
	BndDuplicateFrameName Code = 3007

	// Strict mode
	StrInfo               Code = 4000
	StrWith               Code = 4001
	StrDeleteIdentifier   Code = 4002
	StrOctalLiteral       Code = 4003
	StrOctalEscape        Code = 4004
	StrEvalArguments      Code = 4005
	StrReservedWord       Code = 4006
	StrNonSimpleDirective Code = 4007

	// Форма конструкций
	FrmInfo                  Code = 5000
	FrmInvalidTarget         Code = 5001
	FrmPatternMember         Code = 5002
	FrmShorthandInit         Code = 5003
	FrmOptionalOutsideChain  Code = 5004
	FrmForInitializer        Code = 5005
	FrmLexicalInStatement    Code = 5006
	FrmRestPosition          Code = 5007
	FrmDuplicateProto        Code = 5008
	FrmDuplicateDefault      Code = 5009
	FrmDuplicateConstructor  Code = 5010
	FrmSpecialConstructor    Code = 5011
	FrmStaticPrototype       Code = 5012
	FrmInvalidIdentifier     Code = 5013
	FrmReservedWord          Code = 5014
	FrmLabelledFunction      Code = 5015
	FrmMissingInitializer    Code = 5016
	FrmAccessorParams        Code = 5017
	FrmInvalidRegExpFlags    Code = 5018
	FrmTemplateInChain       Code = 5019
	FrmConstructorPrivate    Code = 5020
	FrmInvalidPrivateDelete  Code = 5021
	FrmInvalidPrivateName    Code = 5022
	FrmPatternProperty       Code = 5023
	FrmStatementDeclaration  Code = 5024
	FrmConstructorField      Code = 5025
	FrmInvalidTemplateEscape Code = 5026
	FrmNewOptionalChain      Code = 5027
	FrmInvalidMetaProperty   Code = 5028
	FrmInvalidExportBinding  Code = 5029
	FrmDuplicateRegExpGroups Code = 5030

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Входные файлы
	InpInfo      Code = 7000
	InpMalformed Code = 7001
	InpShape     Code = 7002
	InpOptions   Code = 7003
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		LblInfo:              "Label information",
		LblUnboundBreak:      "Unbound break",
		LblUnboundContinue:   "Unbound continue",
		LblContinueNotLoop:   "Continue target is not an iteration statement",
		LblDuplicateLabel:    "Duplicate label",
		LblReservedLabelName: "Reserved word used as label",

		CtxInfo:                    "Context information",
		CtxAwaitOutsideAsync:       "Await outside async closure",
		CtxYieldOutsideGenerator:   "Yield outside generator",
		CtxSuperCallOutsideCtor:    "Super call outside derived constructor",
		CtxSuperMemberOutsideMeth:  "Super member outside method",
		CtxNewTargetOutsideFunc:    "new.target outside function",
		CtxReturnOutsideFunc:       "Return outside function",
		CtxImportMetaOutsideModule: "import.meta outside module",
		CtxModuleDeclOutsideModule: "Module declaration outside module",
		CtxAwaitInParams:           "Await in formal parameters",
		CtxYieldInParams:           "Yield in formal parameters",
		CtxArgumentsInClassInit:    "arguments in class initializer",
		CtxUnresolvedPrivateName:   "Undeclared private name",
		CtxForAwaitOutsideAsync:    "for await outside async closure",

		BndInfo:               "Binding information",
		BndDuplicateBinding:   "Duplicate binding",
		BndDuplicateParam:     "Duplicate parameter",
		BndLetName:            "let used as lexical name",
		BndDuplicateExport:    "Duplicate export",
		BndUndeclaredExport:   "Export of undeclared binding",
		BndDuplicatePrivate:   "Duplicate private name",
		BndDuplicateFrameName: "Duplicate frame binding",

		StrInfo:               "Strict mode information",
		StrWith:               "with in strict mode",
		StrDeleteIdentifier:   "delete of identifier in strict mode",
		StrOctalLiteral:       "Legacy octal literal in strict mode",
		StrOctalEscape:        "Octal escape in strict mode",
		StrEvalArguments:      "eval or arguments bound in strict mode",
		StrReservedWord:       "Strict mode reserved word",
		StrNonSimpleDirective: "use strict with non-simple parameters",

		FrmInfo:                  "Form information",
		FrmInvalidTarget:         "Invalid assignment target",
		FrmPatternMember:         "Member expression in binding pattern",
		FrmShorthandInit:         "Shorthand property initializer outside pattern",
		FrmOptionalOutsideChain:  "Optional flag outside chain",
		FrmForInitializer:        "Initializer in for-in/of head",
		FrmLexicalInStatement:    "Lexical declaration in statement position",
		FrmRestPosition:          "Rest element position",
		FrmDuplicateProto:        "Duplicate __proto__",
		FrmDuplicateDefault:      "Duplicate default clause",
		FrmDuplicateConstructor:  "Duplicate constructor",
		FrmSpecialConstructor:    "Special constructor",
		FrmStaticPrototype:       "Static prototype member",
		FrmInvalidIdentifier:     "Invalid identifier",
		FrmReservedWord:          "Reserved word",
		FrmLabelledFunction:      "Labelled function",
		FrmMissingInitializer:    "Missing initializer",
		FrmAccessorParams:        "Accessor parameter count",
		FrmInvalidRegExpFlags:    "Invalid regular expression flags",
		FrmTemplateInChain:       "Tagged template in optional chain",
		FrmConstructorPrivate:    "Private constructor name",
		FrmInvalidPrivateDelete:  "delete of private member",
		FrmInvalidPrivateName:    "Misplaced private name",
		FrmPatternProperty:       "Invalid property in destructuring pattern",
		FrmStatementDeclaration:  "Declaration in statement position",
		FrmConstructorField:      "Field named constructor",
		FrmInvalidTemplateEscape: "Invalid escape in template literal",
		FrmNewOptionalChain:      "Optional chain in new expression",
		FrmInvalidMetaProperty:   "Invalid meta property",
		FrmInvalidExportBinding:  "Invalid export binding",
		FrmDuplicateRegExpGroups: "Duplicate regular expression group",

		ObsInfo:    "Observability information",
		ObsTimings: "Pipeline timings",

		InpInfo:      "Input information",
		InpMalformed: "Malformed JSON input",
		InpShape:     "Input is not a well-formed ESTree program",
		InpOptions:   "Invalid validation options",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LBL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CTX%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("FRM%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("INP%04d", ic)
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
