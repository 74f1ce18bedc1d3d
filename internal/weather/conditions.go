package weather

import "strconv"

// Provider identities used as keys in the condition table.
const (
	ProviderOpenWeather = "openweathermap"
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenMeteo   = "openmeteo"
	ProviderWAQI        = "waqi"
)

type conditionKey struct {
	provider string
	code     string
}

// conditionTable is the single closed mapping from provider condition codes to canonical conditions.
// Anything not listed resolves to ConditionUnknown.
var conditionTable = map[conditionKey]Condition{}

func register(provider string, cond Condition, codes ...int) {
	for _, c := range codes {
		conditionTable[conditionKey{provider: provider, code: strconv.Itoa(c)}] = cond
	}
}

func init() {
	// OpenWeatherMap condition IDs.
	register(ProviderOpenWeather, ConditionThunderstorm, 200, 201, 202, 210, 211, 212, 221, 230, 231, 232, 771, 781)
	register(ProviderOpenWeather, ConditionDrizzle, 300, 301, 302, 310, 311, 312, 313, 314, 321)
	register(ProviderOpenWeather, ConditionRain, 500, 501, 502, 503, 504)
	register(ProviderOpenWeather, ConditionSleet, 511, 611, 612, 613, 615, 616)
	register(ProviderOpenWeather, ConditionShowerRain, 520, 521, 522, 531)
	register(ProviderOpenWeather, ConditionSnow, 600, 601, 602, 620, 621, 622)
	register(ProviderOpenWeather, ConditionMist, 701, 721)
	register(ProviderOpenWeather, ConditionDust, 711, 731, 751, 761, 762)
	register(ProviderOpenWeather, ConditionFog, 741)
	register(ProviderOpenWeather, ConditionClear, 800)
	register(ProviderOpenWeather, ConditionFewClouds, 801)
	register(ProviderOpenWeather, ConditionScatteredClouds, 802)
	register(ProviderOpenWeather, ConditionBrokenClouds, 803)
	register(ProviderOpenWeather, ConditionOvercast, 804)

	// WeatherAPI.com condition codes.
	register(ProviderWeatherAPI, ConditionClear, 1000)
	register(ProviderWeatherAPI, ConditionFewClouds, 1003)
	register(ProviderWeatherAPI, ConditionBrokenClouds, 1006)
	register(ProviderWeatherAPI, ConditionOvercast, 1009)
	register(ProviderWeatherAPI, ConditionMist, 1030)
	register(ProviderWeatherAPI, ConditionFog, 1135, 1147)
	register(ProviderWeatherAPI, ConditionDrizzle, 1072, 1150, 1153, 1168, 1171)
	register(ProviderWeatherAPI, ConditionRain, 1063, 1180, 1183, 1186, 1189, 1192, 1195, 1198, 1201)
	register(ProviderWeatherAPI, ConditionShowerRain, 1240, 1243, 1246)
	register(ProviderWeatherAPI, ConditionSleet, 1069, 1204, 1207, 1237, 1249, 1252, 1261, 1264)
	register(ProviderWeatherAPI, ConditionSnow, 1066, 1114, 1117, 1210, 1213, 1216, 1219, 1222, 1225, 1255, 1258)
	register(ProviderWeatherAPI, ConditionThunderstorm, 1087, 1273, 1276, 1279, 1282)

	// Open-Meteo WMO weather codes.
	register(ProviderOpenMeteo, ConditionClear, 0)
	register(ProviderOpenMeteo, ConditionFewClouds, 1)
	register(ProviderOpenMeteo, ConditionScatteredClouds, 2)
	register(ProviderOpenMeteo, ConditionOvercast, 3)
	register(ProviderOpenMeteo, ConditionFog, 45, 48)
	register(ProviderOpenMeteo, ConditionDrizzle, 51, 53, 55, 56, 57)
	register(ProviderOpenMeteo, ConditionRain, 61, 63, 65, 66, 67)
	register(ProviderOpenMeteo, ConditionSnow, 71, 73, 75, 77, 85, 86)
	register(ProviderOpenMeteo, ConditionShowerRain, 80, 81, 82)
	register(ProviderOpenMeteo, ConditionThunderstorm, 95, 96, 99)
}

// ConditionFor maps a provider's condition token to the canonical condition.
func ConditionFor(provider, code string) Condition {
	if cond, ok := conditionTable[conditionKey{provider: provider, code: code}]; ok {
		return cond
	}
	return ConditionUnknown
}
