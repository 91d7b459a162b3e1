package products

// DefaultManufacturer is used when a product does not override it.
const DefaultManufacturer = "Tuya"

// FingerbotInfo maps the datapoint IDs a fingerbot-style pusher exposes.
// IDs differ per product generation, so each catalogue entry carries its
// own map. A zero ManualControl means the product has no manual-press
// reporting and emits no button events.
type FingerbotInfo struct {
	Switch           int
	Mode             int
	UpPosition       int
	DownPosition     int
	HoldTime         int
	ReversePositions int
	ManualControl    int
	Program          int
}

// ProductInfo describes one known product.
type ProductInfo struct {
	Name         string
	Manufacturer string
	Fingerbot    *FingerbotInfo
}

// CategoryInfo groups the known products of one Tuya category, with an
// optional category-wide fallback for unknown product IDs.
type CategoryInfo struct {
	Products map[string]*ProductInfo
	Info     *ProductInfo
}

// fingerbotPlus covers the Fingerbot Plus generations under the szjqr
// category.
var fingerbotPlus = &ProductInfo{
	Name: "Fingerbot Plus",
	Fingerbot: &FingerbotInfo{
		Switch:           2,
		Mode:             8,
		UpPosition:       15,
		DownPosition:     9,
		HoldTime:         10,
		ReversePositions: 11,
		ManualControl:    17,
		Program:          121,
	},
}

// fingerbot covers the original Fingerbot generations.
var fingerbot = &ProductInfo{
	Name: "Fingerbot",
	Fingerbot: &FingerbotInfo{
		Switch:           2,
		Mode:             8,
		UpPosition:       15,
		DownPosition:     9,
		HoldTime:         10,
		ReversePositions: 11,
		Program:          121,
	},
}

// fingerbotPlusKG covers the Fingerbot Plus variants sold under the kg
// (switch) category, which use a different datapoint layout.
var fingerbotPlusKG = &ProductInfo{
	Name: "Fingerbot Plus",
	Fingerbot: &FingerbotInfo{
		Switch:           1,
		Mode:             101,
		UpPosition:       106,
		DownPosition:     102,
		HoldTime:         103,
		ReversePositions: 104,
		ManualControl:    107,
		Program:          109,
	},
}

// cubeTouch is shared by both CubeTouch generations.
var cubeTouch = &FingerbotInfo{
	Switch:           1,
	Mode:             2,
	UpPosition:       5,
	DownPosition:     6,
	HoldTime:         3,
	ReversePositions: 4,
}

// catalogue is the known-device database, keyed by Tuya category then
// product ID. Grown organically as users report working devices.
var catalogue = map[string]*CategoryInfo{
	"cl": {
		Products: map[string]*ProductInfo{
			"kcy0x4pi": {Name: "Smart Curtain Robot"},
		},
	},
	"co2bj": {
		Products: map[string]*ProductInfo{
			"59s19z5m": {Name: "CO2 Detector"},
		},
	},
	"ms": {
		Products: map[string]*ProductInfo{
			"ludzroix": {Name: "Smart Lock"},
			"isk2p555": {Name: "Smart Lock"},
		},
	},
	"jtmspro": {
		Products: map[string]*ProductInfo{
			"ebd5e0uauqx0vfsp": {Name: "CentralAcesso"},
		},
	},
	"szjqr": {
		Products: map[string]*ProductInfo{
			"3yqdo5yt": {Name: "CUBETOUCH 1s", Fingerbot: cubeTouch},
			"xhf790if": {Name: "CubeTouch II", Fingerbot: cubeTouch},
			"blliqpsj": fingerbotPlus,
			"ndvkgsrm": fingerbotPlus,
			"yiihr7zh": fingerbotPlus,
			"neq16kgd": fingerbotPlus,
			"ltak7e1p": fingerbot,
			"y6kttvd6": fingerbot,
			"yrnk7mnn": fingerbot,
			"nvr2rocq": fingerbot,
			"bnt7wajf": fingerbot,
			"rvdceqjh": fingerbot,
			"5xhbk964": fingerbot,
		},
	},
	"kg": {
		Products: map[string]*ProductInfo{
			"mknd4lci": fingerbotPlusKG,
			"riecov42": fingerbotPlusKG,
		},
	},
	"wk": {
		Products: map[string]*ProductInfo{
			"drlajpqc": {Name: "Thermostatic Radiator Valve"},
			"nhj2j7su": {Name: "Thermostatic Radiator Valve"},
		},
	},
	"wsdcg": {
		Products: map[string]*ProductInfo{
			"ojzlzzsw": {Name: "Soil moisture sensor"},
		},
	},
	"znhsb": {
		Products: map[string]*ProductInfo{
			"cdlandip": {Name: "Smart water bottle"},
		},
	},
	"sfkzq": {
		Products: map[string]*ProductInfo{
			"nxquc5lb": {Name: "Water valve controller"},
		},
	},
	"ggq": {
		Products: map[string]*ProductInfo{
			"6pahkcau": {Name: "Irrigation computer"},
			"hfgdqhho": {Name: "Irrigation computer"},
			"fnlw6npo": {Name: "Irrigation computer"},
		},
	},
}

// InfoByIDs looks up product information by category and product ID.
// An unknown product ID within a known category falls back to the
// category-wide default, if one exists.
//
// Returns:
//   - *ProductInfo: The product information, or nil if unknown
func InfoByIDs(category, productID string) *ProductInfo {
	categoryInfo, ok := catalogue[category]
	if !ok {
		return nil
	}
	if product, ok := categoryInfo.Products[productID]; ok {
		return product
	}
	return categoryInfo.Info
}

// ManufacturerOf returns the product's manufacturer, or the default for
// products that do not override it (and for unknown products).
func ManufacturerOf(product *ProductInfo) string {
	if product == nil || product.Manufacturer == "" {
		return DefaultManufacturer
	}
	return product.Manufacturer
}
