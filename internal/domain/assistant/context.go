package assistant

import (
	"fmt"
	"strings"
	"time"

	"krishisahay/internal/domain/language"
)

// 印度农季：Kharif（季风季）、Rabi（冬季）、Zaid（夏季）。
// 6–10 月为 Kharif，11–3 月为 Rabi，其余为 Zaid。

// CurrentSeason 返回给定时刻的农季描述，用于提示上下文。
func CurrentSeason(t time.Time) string {
	switch m := t.Month(); {
	case m >= time.June && m <= time.October:
		return "Kharif (monsoon)"
	case m >= time.November || m <= time.March:
		return "Rabi (winter)"
	default:
		return "Zaid (summer)"
	}
}

// CurrentSeasonShort 短格式农季标识。
func CurrentSeasonShort(t time.Time) string {
	switch m := t.Month(); {
	case m >= time.June && m <= time.October:
		return "kharif"
	case m >= time.November || m <= time.March:
		return "rabi"
	default:
		return "zaid"
	}
}

// 邦/地区 -> 主要响应语言。
var regionLanguage = map[string]language.Code{
	"andhra pradesh":   language.Telugu,
	"telangana":        language.Telugu,
	"tamil nadu":       language.Tamil,
	"kerala":           language.Malayalam,
	"karnataka":        language.Kannada,
	"maharashtra":      language.Marathi,
	"gujarat":          language.Gujarati,
	"rajasthan":        language.Hindi,
	"uttar pradesh":    language.Hindi,
	"madhya pradesh":   language.Hindi,
	"bihar":            language.Hindi,
	"west bengal":      language.Bengali,
	"odisha":           language.Odia,
	"punjab":           language.Punjabi,
	"haryana":          language.Hindi,
	"delhi":            language.Hindi,
	"uttarakhand":      language.Hindi,
	"himachal pradesh": language.Hindi,
	"jharkhand":        language.Hindi,
	"chhattisgarh":     language.Hindi,
	"assam":            language.Assamese,
	"goa":              language.English,
}

// RegionLanguage 按地区名查主要语言，未知地区回落英语。
func RegionLanguage(region string) language.Code {
	key := strings.ToLower(strings.TrimSpace(region))
	if key == "" {
		return language.English
	}
	if code, ok := regionLanguage[key]; ok {
		return code
	}
	return language.English
}

// BuildContextPrompt 拼装提示用的地域/农季/位置上下文。
// season 为空时按 now 推算；经纬度保留两位小数。
func BuildContextPrompt(region, season string, lat, lon *float64, now time.Time) string {
	var parts []string
	if region != "" {
		parts = append(parts, "Region: "+region)
	}
	if season == "" {
		season = CurrentSeason(now)
	}
	parts = append(parts, "Current season in India: "+season)
	if lat != nil && lon != nil {
		parts = append(parts, fmt.Sprintf("Approximate location: %.2f, %.2f", *lat, *lon))
	}
	return strings.Join(parts, ". ")
}
