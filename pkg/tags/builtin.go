package tags

import "github.com/ssargent/gdstxt/pkg/gds"

// builtin lists the GDSII stream format record types, release 6.0.
var builtin = []Entry{
	{0x00, "HEADER", gds.Int16},
	{0x01, "BGNLIB", gds.Int16},
	{0x02, "LIBNAME", gds.ASCII},
	{0x03, "UNITS", gds.Real64},
	{0x04, "ENDLIB", gds.NoData},
	{0x05, "BGNSTR", gds.Int16},
	{0x06, "STRNAME", gds.ASCII},
	{0x07, "ENDSTR", gds.NoData},
	{0x08, "BOUNDARY", gds.NoData},
	{0x09, "PATH", gds.NoData},
	{0x0A, "SREF", gds.NoData},
	{0x0B, "AREF", gds.NoData},
	{0x0C, "TEXT", gds.NoData},
	{0x0D, "LAYER", gds.Int16},
	{0x0E, "DATATYPE", gds.Int16},
	{0x0F, "WIDTH", gds.Int32},
	{0x10, "XY", gds.Int32},
	{0x11, "ENDEL", gds.NoData},
	{0x12, "SNAME", gds.ASCII},
	{0x13, "COLROW", gds.Int16},
	{0x14, "TEXTNODE", gds.NoData},
	{0x15, "NODE", gds.NoData},
	{0x16, "TEXTTYPE", gds.Int16},
	{0x17, "PRESENTATION", gds.BitArray},
	{0x18, "SPACING", gds.Int16},
	{0x19, "STRING", gds.ASCII},
	{0x1A, "STRANS", gds.BitArray},
	{0x1B, "MAG", gds.Real64},
	{0x1C, "ANGLE", gds.Real64},
	{0x1D, "UINTEGER", gds.Int16},
	{0x1E, "USTRING", gds.ASCII},
	{0x1F, "REFLIBS", gds.ASCII},
	{0x20, "FONTS", gds.ASCII},
	{0x21, "PATHTYPE", gds.Int16},
	{0x22, "GENERATIONS", gds.Int16},
	{0x23, "ATTRTABLE", gds.ASCII},
	{0x24, "STYPTABLE", gds.ASCII},
	{0x25, "STRTYPE", gds.Int16},
	{0x26, "ELFLAGS", gds.BitArray},
	{0x27, "ELKEY", gds.Int32},
	{0x28, "LINKTYPE", gds.Int16},
	{0x29, "LINKKEYS", gds.Int32},
	{0x2A, "NODETYPE", gds.Int16},
	{0x2B, "PROPATTR", gds.Int16},
	{0x2C, "PROPVALUE", gds.ASCII},
	{0x2D, "BOX", gds.NoData},
	{0x2E, "BOXTYPE", gds.Int16},
	{0x2F, "PLEX", gds.Int32},
	{0x30, "BGNEXTN", gds.Int32},
	{0x31, "ENDEXTN", gds.Int32},
	{0x32, "TAPENUM", gds.Int16},
	{0x33, "TAPECODE", gds.Int16},
	{0x34, "STRCLASS", gds.BitArray},
	{0x35, "RESERVED", gds.Int32},
	{0x36, "FORMAT", gds.Int16},
	{0x37, "MASK", gds.ASCII},
	{0x38, "ENDMASKS", gds.NoData},
	{0x39, "LIBDIRSIZE", gds.Int16},
	{0x3A, "SRFNAME", gds.ASCII},
	{0x3B, "LIBSECUR", gds.Int16},
}
