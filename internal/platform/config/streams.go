package config

import (
	"os"
	"strings"
)

// channelEnv names the environment variable holding each built-in channel's
// upstream playlist URL.
var channelEnv = map[string]string{
	"gma7":               "GMA7_URL",
	"cinemoph":           "CINEMOPH_URL",
	"kapamilyachannelHD": "KAPAMILYA_URL",
	"gtv":                "GTV_URL",
	"cinemaoneph":        "CINEMAONE_URL",
	"alltv2":             "ALLTV_URL",
	"net25":              "NET25_URL",
	"teleradyo":          "TELERADYO_URL",
	"anchd":              "ANC_HD_URL",
	"myxphilippines":     "MYX_PHILIPPINES_URL",
	"bilyonaryo":         "BILYONARYO_CHANNEL_URL",
	"tv5hd":              "TV5_HD_URL",
	"a2z":                "A2Z_URL",
	"ibc":                "IBC_URL",
	"untv":               "UNTV_URL",
	"ptv4":               "PTV4_URL",
	"dzrhtv":             "DZRH_TV_URL",
	"knowledge":          "KNOWLEDGE_CHANNELS_URL",
	"aliw23":             "ALIW_CHANNEL_23_URL",
	"cltv36":             "CLTV_36_URL",
	"spotlight":          "SPOTLIGHT_TV_URL",
	"rjtv":               "RJ_TV_URL",
	"rjtv29":             "RJTV_29_URL",
	"onemedia":           "ONE_MEDIA_URL",
	"lachtv":             "LACH_TV_URL",
	"oneph":              "ONE_PH_URL",
	"onenews":            "ONE_NEWS_URL",
	"vivacinema":         "VIVA_CINEMA_URL",
	"pbo":                "PBO_URL",
	"star1":              "STAR_1_URL",
	"cinemaworld":        "CINEMAWORLD_URL",
}

// LoadStreams builds the stream key to upstream playlist URL mapping from the
// built-in channel variables and the STREAMS variable ("key=url,key2=url2").
// STREAMS entries win over built-in ones. Keys without a URL are omitted.
func LoadStreams() map[string]string {
	streams := make(map[string]string, len(channelEnv))
	for key, env := range channelEnv {
		if u := strings.TrimSpace(os.Getenv(env)); u != "" {
			streams[key] = u
		}
	}
	for key, u := range ParseStreams(os.Getenv("STREAMS")) {
		streams[key] = u
	}
	return streams
}

// ParseStreams parses "key=url" pairs separated by commas. Malformed pairs
// are skipped. URLs may themselves contain '='.
func ParseStreams(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, u, ok := strings.Cut(strings.TrimSpace(pair), "=")
		key, u = strings.TrimSpace(key), strings.TrimSpace(u)
		if !ok || key == "" || u == "" {
			continue
		}
		out[key] = u
	}
	return out
}
