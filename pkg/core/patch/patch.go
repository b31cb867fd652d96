// Package patch applies in-place repairs to a generated narrative document.
// These are the fixes that need no regeneration: filling interpolation holes,
// rounding raw float artifacts, and pulling drifted added-value figures back
// to their canonical projection.
package patch

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
	"shoryoku/pkg/core/model"
)

// reconcileTolerance is the relative divergence above which a prose figure is
// rewritten to the canonical projection. Below it, minor rounding in prose is
// left alone.
const reconcileTolerance = 0.10

var (
	reUnroundedDecimal = regexp.MustCompile(`[0-9]+\.[0-9]{6,}`)
	reAddedValue       = regexp.MustCompile(`付加価値額[^0-9]*?([0-9][0-9,]*)円`)
)

// FillTextHoles repairs textual defects left by empty interpolations and raw
// arithmetic. Returns the number of repairs applied.
func FillTextHoles(doc *docmodel.Document, equipment *model.EquipmentRecord) int {
	fallback := strings.TrimSpace(equipment.Features)
	if fallback == "" {
		subject := strings.TrimSpace(equipment.Name)
		if subject == "" {
			subject = "本設備"
		}
		fallback = fmt.Sprintf("%sによる対象業務の自動処理機能", subject)
	}

	repairs := 0
	doc.VisitText(func(text string) (string, bool) {
		orig := text

		if n := strings.Count(text, "として、が挙げられる"); n > 0 {
			text = strings.ReplaceAll(text, "として、が挙げられる", "として、"+fallback+"が挙げられる")
			repairs += n
		}
		text = reUnroundedDecimal.ReplaceAllStringFunc(text, func(raw string) string {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return raw
			}
			repairs++
			return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
		})

		if text == orig {
			return "", false
		}
		return text, true
	})
	return repairs
}

// ReconcileAddedValue rewrites every added-value figure in the prose that
// diverges more than the tolerance from its nearest canonical projection
// (baseline plus five plan years). Returns the number of figures rewritten.
func ReconcileAddedValue(doc *docmodel.Document, base finance.BaselineFinancials, params config.ProjectionParameters) int {
	canonical := make([]int64, config.ProjectionYears+1)
	for year := range canonical {
		canonical[year] = finance.ProjectAddedValue(base, params, year)
	}

	rewrites := 0
	doc.VisitText(func(text string) (string, bool) {
		normalized, offsets := normalizeWithOffsets(text)
		spans := reAddedValue.FindAllStringSubmatchIndex(normalized, -1)
		if len(spans) == 0 {
			return "", false
		}

		// Splice rewrites into the original text. Matching runs on the
		// normalized form, but only the matched figure span is replaced, so
		// full-width digits elsewhere in the cell stay as written.
		var sb strings.Builder
		last := 0
		changed := false
		for _, span := range spans {
			s, e := span[2], span[3]
			v, err := strconv.ParseInt(strings.ReplaceAll(normalized[s:e], ",", ""), 10, 64)
			if err != nil {
				continue
			}
			nearest := nearestCanonical(canonical, v)
			if nearest <= 0 || relDiff(v, nearest) <= reconcileTolerance {
				continue
			}
			sb.WriteString(text[last:offsets[s]])
			sb.WriteString(group(nearest))
			last = offsets[e]
			changed = true
			rewrites++
		}
		if !changed {
			return "", false
		}
		sb.WriteString(text[last:])
		return sb.String(), true
	})
	return rewrites
}

// normalizeWithOffsets digit-normalizes text and returns, for every byte
// position in the normalized form (inclusive of the end), the byte offset of
// the corresponding rune in the original. Normalization maps single runes to
// single runes, so match spans in the normalized form translate directly.
func normalizeWithOffsets(text string) (string, []int) {
	var sb strings.Builder
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		norm := docmodel.NormalizeDigits(string(r))
		for j := 0; j < len(norm); j++ {
			offsets = append(offsets, i)
		}
		sb.WriteString(norm)
	}
	offsets = append(offsets, len(text))
	return sb.String(), offsets
}

func nearestCanonical(canonical []int64, v int64) int64 {
	var best int64
	bestDiff := int64(math.MaxInt64)
	for _, c := range canonical {
		d := c - v
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			bestDiff = d
			best = c
		}
	}
	return best
}

func relDiff(a, b int64) float64 {
	if b == 0 {
		return 0
	}
	return math.Abs(float64(a-b)) / math.Abs(float64(b))
}

func group(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
