package fxrates

// The upstream addresses every priced series by a numeric item id. Market
// series (interbank FX, metals, commodities) have one id per asset;
// institution quotes have a separate id per (asset, institution) pair.
// The ids are stable upstream identifiers, enumerated here instead of being
// discovered at runtime.

type itemKey struct {
	asset       string
	institution string
}

// marketItems maps an asset symbol to its market-price item id.
var marketItems = map[string]int{
	// currencies against TRY
	"usd": 1,
	"eur": 2,
	"gbp": 3,
	"chf": 4,
	"jpy": 5,
	"aud": 6,
	"cad": 7,
	"dkk": 8,
	"nok": 9,
	"sek": 10,
	"rub": 11,
	"cny": 12,
	"sar": 13,
	"aed": 14,
	"kwd": 15,

	// precious metals
	"gram-altin":    22,
	"ceyrek-altin":  23,
	"yarim-altin":   24,
	"tam-altin":     25,
	"cumhuriyet":    26,
	"ons":           27,
	"gram-gumus":    28,
	"gram-platin":   29,
	"gram-paladyum": 30,

	// energy and commodities
	"brent":       40,
	"wti":         41,
	"dogalgaz":    42,
	"bakir":       43,
	"aluminyum":   44,
	"nikel":       45,
	"cinko":       46,
	"pamuk":       47,
	"kahve":       48,
	"kakao":       49,
	"seker":       50,
	"bugday":      51,
	"misir":       52,
	"soya":        53,
	"canli-sigir": 54,
}

// bankItems maps (asset, institution) to the item id of that institution's
// published rate. Only USD, EUR and gram gold are quoted per bank upstream.
var bankItems = map[itemKey]int{
	{"usd", "akbank"}:       101,
	{"usd", "garanti"}:      102,
	{"usd", "isbank"}:       103,
	{"usd", "yapikredi"}:    104,
	{"usd", "ziraat"}:       105,
	{"usd", "vakifbank"}:    106,
	{"usd", "halkbank"}:     107,
	{"usd", "qnb"}:          108,
	{"usd", "denizbank"}:    109,
	{"usd", "teb"}:          110,
	{"usd", "enpara"}:       111,
	{"usd", "kuveytturk"}:   112,
	{"eur", "akbank"}:       121,
	{"eur", "garanti"}:      122,
	{"eur", "isbank"}:       123,
	{"eur", "yapikredi"}:    124,
	{"eur", "ziraat"}:       125,
	{"eur", "vakifbank"}:    126,
	{"eur", "halkbank"}:     127,
	{"eur", "qnb"}:          128,
	{"gram-altin", "akbank"}:     141,
	{"gram-altin", "garanti"}:    142,
	{"gram-altin", "isbank"}:     143,
	{"gram-altin", "kuveytturk"}: 144,
	{"gram-altin", "ziraat"}:     145,
}

// assetSlugs maps an asset symbol to its bank-rates page slug.
var assetSlugs = map[string]string{
	"usd":        "amerikan-dolari",
	"eur":        "euro",
	"gbp":        "ingiliz-sterlini",
	"gram-altin": "gram-altin",
}

// bankNames maps a bank slug seen on the rates page to a display name.
var bankNames = map[string]string{
	"akbank":     "Akbank",
	"garanti":    "Garanti BBVA",
	"isbank":     "İş Bankası",
	"yapikredi":  "Yapı Kredi",
	"ziraat":     "Ziraat Bankası",
	"vakifbank":  "VakıfBank",
	"halkbank":   "Halkbank",
	"qnb":        "QNB",
	"denizbank":  "DenizBank",
	"teb":        "TEB",
	"enpara":     "Enpara",
	"kuveytturk": "Kuveyt Türk",
}

// itemID resolves an asset (and optional institution) to an upstream item id.
func itemID(asset, institution string) (int, bool) {
	if institution == "" {
		id, ok := marketItems[asset]
		return id, ok
	}
	id, ok := bankItems[itemKey{asset: asset, institution: institution}]
	return id, ok
}
