package testutils

// Schema is a small database definition in canonical writer order: two
// menus, an analog input type with device support, a binary output type
// without any, two drivers and a break table. Writing back a base loaded
// from it reproduces the text.
const Schema = `menu(menuScan) {
	choice(menuScanPassive,"Passive")
	choice(menuScan1_second,"1 second")
	choice(menuScanI_O_Intr,"I/O Intr")
}
menu(menuLinr) {
	choice(menuLinrNO_CONVERSION,"NO CONVERSION")
	choice(menuLinrSLOPE,"SLOPE")
	choice(menuLinrLINEAR,"LINEAR")
}
recordtype(ai) {
	field(NAME,DBF_STRING) {
		prompt("Record Name")
		special(SPC_NOMOD)
		size(29)
	}
	field(DESC,DBF_STRING) {
		prompt("Descriptor")
		promptgroup(GUI_COMMON)
		size(29)
	}
	field(SCAN,DBF_MENU) {
		prompt("Scan Mechanism")
		promptgroup(GUI_SCAN)
		special(SPC_SCAN)
		menu(menuScan)
		interest(1)
	}
	field(DTYP,DBF_DEVICE) {
		prompt("Device Type")
		promptgroup(GUI_LINKS)
		interest(1)
	}
	field(PHAS,DBF_SHORT) {
		prompt("Scan Phase")
		promptgroup(GUI_SCAN)
		special(SPC_SCAN)
	}
	field(VAL,DBF_DOUBLE) {
		prompt("Current EGU Value")
		promptgroup(GUI_INPUTS)
		pp(TRUE)
		asl(ASL0)
	}
	field(INP,DBF_INLINK) {
		prompt("Input Specification")
		promptgroup(GUI_INPUTS)
		interest(1)
	}
	field(FLNK,DBF_FWDLINK) {
		prompt("Forward Process Link")
		promptgroup(GUI_LINKS)
		interest(1)
	}
	field(LINR,DBF_MENU) {
		prompt("Linearization")
		promptgroup(GUI_CONVERT)
		special(SPC_LINCONV)
		menu(menuLinr)
		pp(TRUE)
		interest(1)
	}
	field(EGUL,DBF_DOUBLE) {
		prompt("Engineer Units Low")
		promptgroup(GUI_CONVERT)
		interest(1)
	}
	field(EGUH,DBF_DOUBLE) {
		prompt("Engineer Units Full")
		initial("100")
		promptgroup(GUI_CONVERT)
		interest(1)
	}
	field(CALC,DBF_STRING) {
		prompt("Calculation")
		promptgroup(GUI_CALC)
		special(SPC_CALC)
		size(40)
	}
	field(MASK,DBF_ULONG) {
		prompt("Hardware Mask")
		promptgroup(GUI_COMMON)
		base(HEX)
		interest(1)
	}
	field(HOPR,DBF_FLOAT) {
		prompt("High Operating Range")
		promptgroup(GUI_DISPLAY)
		interest(1)
	}
	field(CVAL,DBF_UCHAR) {
		prompt("Character Value")
		promptgroup(GUI_COMMON)
	}
	field(RVAL,DBF_LONG) {
		prompt("Current Raw Value")
		pp(TRUE)
	}
	field(PACT,DBF_UCHAR) {
		prompt("Record active")
		interest(1)
	}
	field(SPTR,DBF_NOACCESS) {
		prompt("Support Private")
		special(SPC_NOMOD)
		extra("void *sptr")
		interest(4)
	}
}
recordtype(bo) {
	field(NAME,DBF_STRING) {
		prompt("Record Name")
		special(SPC_NOMOD)
		size(29)
	}
	field(DESC,DBF_STRING) {
		prompt("Descriptor")
		promptgroup(GUI_COMMON)
		size(29)
	}
	field(DTYP,DBF_DEVICE) {
		prompt("Device Type")
		promptgroup(GUI_LINKS)
		interest(1)
	}
	field(VAL,DBF_ENUM) {
		prompt("Current Value")
		promptgroup(GUI_OUTPUT)
		pp(TRUE)
		asl(ASL0)
	}
	field(OUT,DBF_OUTLINK) {
		prompt("Output Specification")
		promptgroup(GUI_OUTPUT)
		interest(1)
	}
	field(HIGH,DBF_DOUBLE) {
		prompt("Seconds to Hold High")
		promptgroup(GUI_OUTPUT)
		interest(1)
	}
}
device(ai,CONSTANT,devAiSoft,"Soft Channel")
device(ai,VME_IO,devAiXy566Se,"XY566SE")
device(ai,CAMAC_IO,devAiCamac,"Camac")
driver(drvXy566)
driver(drvVxi)
breaktable(typeKdegF) {
	0.000000 32.000000
	4095.000000 1832.000000
}
`

// Records is an instance file for Schema, written at level 0.
const Records = `record(ai,"tank:level") {
	field(DESC,"tank level")
	field(SCAN,"1 second")
	field(DTYP,"XY566SE")
	field(INP,"#C3 S2 @parm1")
	field(LINR,"LINEAR")
	field(EGUL,"-10")
	field(EGUH,"10")
}
record(ai,"tank:temp") {
	field(DTYP,"Soft Channel")
	field(INP,"tank:level PP MS")
	field(CALC,"A+B*2")
	field(MASK,"0xff")
}
grecord(bo,"valve:open") {
	field(VAL,"1")
	field(OUT,"tank:temp NPP NMS")
}
`
