package pubmed

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/extractors/html"
)

// ArticleURL is the landing page for a PMID.
const ArticleURL = "https://pubmed.ncbi.nlm.nih.gov/%s/"

var yearPattern = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)

type articleSet struct {
	Articles []article `xml:"PubmedArticle"`
}

type article struct {
	PMID     string `xml:"MedlineCitation>PMID"`
	Title    markup `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract []struct {
		Label string `xml:"Label,attr"`
		markup
	} `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Authors []struct {
		LastName       string `xml:"LastName"`
		ForeName       string `xml:"ForeName"`
		CollectiveName string `xml:"CollectiveName"`
	} `xml:"MedlineCitation>Article>AuthorList>Author"`
	PubYear     string `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	MedlineDate string `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>MedlineDate"`
}

// markup captures element content that may hold inline tags such as <i>.
type markup struct {
	Inner string `xml:",innerxml"`
}

func (m markup) text() string {
	return strings.Join(strings.Fields(html.StripTags(m.Inner)), " ")
}

func (a article) candidate() domain.Candidate {
	c := domain.Candidate{
		ID:    a.PMID,
		Title: a.Title.text(),
		URL:   fmt.Sprintf(ArticleURL, a.PMID),
		Year:  a.year(),
	}

	sections := make([]string, 0, len(a.Abstract))
	for _, part := range a.Abstract {
		text := part.text()
		if text == "" {
			continue
		}
		if part.Label != "" {
			text = part.Label + ": " + text
		}
		sections = append(sections, text)
	}
	c.Abstract = strings.Join(sections, "\n\n")

	for _, au := range a.Authors {
		switch {
		case au.CollectiveName != "":
			c.Authors = append(c.Authors, au.CollectiveName)
		case au.LastName != "":
			c.Authors = append(c.Authors, strings.TrimSpace(au.ForeName+" "+au.LastName))
		}
	}
	return c
}

// year reads PubDate/Year, falling back to the first year in MedlineDate.
func (a article) year() *int {
	for _, s := range []string{a.PubYear, yearPattern.FindString(a.MedlineDate)} {
		if y, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return domain.IntPtr(y)
		}
	}
	return nil
}

// ParseArticles decodes an efetch XML response into candidates.
func ParseArticles(data []byte) ([]domain.Candidate, error) {
	var set articleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("pubmed: decode articles: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(set.Articles))
	for _, a := range set.Articles {
		if a.PMID == "" {
			continue
		}
		candidates = append(candidates, a.candidate())
	}
	return candidates, nil
}
