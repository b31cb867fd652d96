package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"shoryoku/pkg/core/model"
)

const (
	websiteUserAgent = "shoryoku-doc-pipeline/1.0"
	websiteTimeout   = 10 * time.Second

	// Paragraphs shorter than this are navigation or boilerplate.
	minParagraphChars = 60
)

var websiteClient = &http.Client{Timeout: websiteTimeout}

// OverlayWebsite fills the business description from the applicant's public
// website when the survey left it empty. The overlay is best effort: any
// fetch or parse failure leaves the record unchanged.
func OverlayWebsite(ctx context.Context, rec *model.ApplicantRecord) {
	if rec.URL == "" || rec.BusinessDesc != "" {
		return
	}

	desc, err := fetchDescription(ctx, rec.URL)
	if err != nil {
		fmt.Printf("⚠️ ウェブサイト補完をスキップ: %v\n", err)
		return
	}
	if desc != "" {
		rec.BusinessDesc = desc
		fmt.Printf("ℹ️ 事業内容をウェブサイトから補完しました (%d文字)\n", len([]rune(desc)))
	}
}

func fetchDescription(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", websiteUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := websiteClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("site returned status %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	return extractDescription(doc), nil
}

// extractDescription prefers the meta description and falls back to the first
// substantial body paragraph.
func extractDescription(doc *goquery.Document) string {
	if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if meta = strings.TrimSpace(meta); meta != "" {
			return meta
		}
	}
	if meta, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if meta = strings.TrimSpace(meta); meta != "" {
			return meta
		}
	}

	var para string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len([]rune(text)) >= minParagraphChars {
			para = text
			return false
		}
		return true
	})
	return para
}
