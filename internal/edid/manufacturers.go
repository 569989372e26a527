package edid

import "strings"

// manufacturerCodes maps three letter PNP manufacturer codes to brand names.
var manufacturerCodes = map[string]string{
	"AAC": "AcerView",
	"ACI": "Asus (ASUSTeK Computer Inc.)",
	"ACR": "Acer",
	"ACT": "Targa",
	"ADI": "ADI Corporation",
	"AIC": "AG Neovo",
	"ALX": "Anrecson",
	"AMW": "AMW",
	"AOC": "AOC",
	"API": "Acer America Corp.",
	"APP": "Apple Computer",
	"ART": "ArtMedia",
	"AST": "AST Research",
	"AUO": "Asus",
	"BMM": "BMM",
	"BNQ": "BenQ",
	"BOE": "BOE Display Technology",
	"CMO": "Acer",
	"CPL": "Compal",
	"CPQ": "Compaq",
	"CPT": "Chunghwa Picture Tubes, Ltd.",
	"CTX": "CTX",
	"DEC": "DEC",
	"DEL": "Dell",
	"DPC": "Delta",
	"DWE": "Daewoo",
	"ECS": "ELITEGROUP Computer Systems",
	"EIZ": "EIZO",
	"ELS": "ELSA",
	"ENC": "EIZO",
	"EPI": "Envision",
	"FCM": "Funai",
	"FUJ": "Fujitsu",
	"FUS": "Fujitsu-Siemens",
	"GSM": "LG Electronics",
	"GWY": "Gateway 2000",
	"GBT": "Gigabyte",
	"HEI": "Hyundai",
	"HIQ": "Hyundai ImageQuest",
	"HIT": "Hyundai",
	"HPN": "HP",
	"HSD": "Hannspree Inc",
	"HSL": "Hansol",
	"HTC": "Hitachi/Nissei",
	"HWP": "HP",
	"IBM": "IBM",
	"ICL": "Fujitsu ICL",
	"IFS": "InFocus",
	"IQT": "Hyundai",
	"IVM": "Iiyama",
	"KDS": "Korea Data Systems",
	"KFC": "KFC Computek",
	"LEN": "Lenovo",
	"LGD": "Asus",
	"LKM": "ADLAS / AZALEA",
	"LNK": "LINK Technologies, Inc.",
	"LPL": "Fujitsu",
	"LTN": "Lite-On",
	"MAG": "MAG InnoVision",
	"MAX": "Belinea",
	"MEI": "Panasonic",
	"MEL": "Mitsubishi Electronics",
	"MIR": "miro Computer Products AG",
	"MSI": "MSI",
	"MS_": "Panasonic",
	"MTC": "MITAC",
	"NAN": "Nanao",
	"NEC": "NEC",
	"NOK": "Nokia Data",
	"NVD": "Fujitsu",
	"OPT": "Optoma",
	"OQI": "OPTIQUEST",
	"PBN": "Packard Bell",
	"PCK": "Daewoo",
	"PDC": "Polaroid",
	"PGS": "Princeton Graphic Systems",
	"PHL": "Philips",
	"PRT": "Princeton",
	"REL": "Relisys",
	"SAM": "Samsung",
	"SAN": "Samsung",
	"SBI": "Smarttech",
	"SEC": "Hewlett-Packard",
	"SGI": "SGI",
	"SMC": "Samtron",
	"SMI": "Smile",
	"SNI": "Siemens Nixdorf",
	"SNY": "Sony",
	"SPT": "Sceptre",
	"SRC": "Shamrock",
	"STN": "Samtron",
	"STP": "Sceptre",
	"SUN": "Sun Microsystems",
	"TAT": "Tatung",
	"TOS": "Toshiba",
	"TRL": "Royal Information Company",
	"TSB": "Toshiba",
	"UNK": "Unknown",
	"UNM": "Unisys Corporation",
	"VSC": "ViewSonic",
	"WTC": "Wen Technology",
	"ZCM": "Zenith",
	"_YV": "Fujitsu",
}

// LookupManufacturer resolves either a three letter PNP code or a brand name
// (case-insensitively) to the canonical (code, brand) pair.
func LookupManufacturer(search string) (code, brand string, ok bool) {
	for c, b := range manufacturerCodes {
		if strings.EqualFold(c, search) || strings.EqualFold(b, search) {
			return c, b, true
		}
	}
	return "", "", false
}
