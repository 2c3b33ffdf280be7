package assistant

import (
	"fmt"
	"strings"
)

// 零依赖兜底回答表，按关键词顺序匹配。
var mockAnswers = []struct {
	keyword  string
	answer   string
	category string
}{
	{
		keyword:  "rice",
		answer:   "Rice cultivation requires well-drained soil (pH 5-6.5). Plant June-July. Use 20-25 kg seeds/ha. NPK 100:50:50 in split doses. Keep 5-7 cm water depth.",
		category: "Crops & Cultivation",
	},
	{
		keyword:  "wheat",
		answer:   "Wheat: loamy soil pH 6-7.5. Sow Nov-Dec. 100-125 kg seeds/ha. Apply 120 kg N, 60 kg P2O5, 40 kg K2O. Harvest at 20-25% moisture.",
		category: "Crops & Cultivation",
	},
	{
		keyword:  "pest",
		answer:   "Use IPM. Identify pests early. Neem-based organic pesticides first. Rotate crops, remove residues, keep field clean.",
		category: "Pest Management",
	},
	{
		keyword:  "fertilizer",
		answer:   "Apply NPK based on soil test. 4:2:1 ratio often works. N in split doses: 50% sowing, 25% tillering, 25% flowering. Use compost.",
		category: "Fertilizers",
	},
}

// MockAnswer 永远可用的兜底回答，任何外部依赖不可用时仍返回结果。
func MockAnswer(query string) (answer, category string) {
	q := strings.ToLower(query)
	for _, m := range mockAnswers {
		if strings.Contains(q, m.keyword) {
			return m.answer, m.category
		}
	}
	return fmt.Sprintf("Thanks for your question about '%s'. Visit your nearest Krishi Vigyan Kendra (KVK) for region-specific guidance.", query),
		"General Agriculture"
}
