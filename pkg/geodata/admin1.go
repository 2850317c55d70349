package geodata

// GeoNames admin1 codes are postal abbreviations for the US and numeric
// codes for Canada. Suggestions display the full region name.

var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana",
	"IA": "Iowa", "KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana",
	"ME": "Maine", "MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan",
	"MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri", "MT": "Montana",
	"NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina",
	"ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon",
	"PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

var caProvinces = map[string]string{
	"01": "Alberta", "02": "British Columbia", "03": "Manitoba",
	"04": "New Brunswick", "05": "Newfoundland and Labrador",
	"07": "Nova Scotia", "08": "Ontario", "09": "Prince Edward Island",
	"10": "Quebec", "11": "Saskatchewan", "12": "Yukon",
	"13": "Northwest Territories", "14": "Nunavut",
}

// RegionName resolves a GeoNames admin1 code to a display name.
// Unknown codes pass through unchanged.
func RegionName(country, admin1 string) string {
	switch country {
	case "US":
		if name, ok := usStates[admin1]; ok {
			return name
		}
	case "CA":
		if name, ok := caProvinces[admin1]; ok {
			return name
		}
	}
	return admin1
}
