package api

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/store"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description rssCDATA `xml:"description"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssCDATA struct {
	Text string `xml:",cdata"`
}

func (s *Server) handleRSS(c *gin.Context) {
	slug := c.Param("slug")
	hours := clampHours(c.Query("hours"))
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	articles, err := s.storage.ListByKeyword(c.Request.Context(), slug, since)
	if err != nil {
		s.log.Error("failed to build rss feed", "slug", slug, "error", err)
		c.String(http.StatusInternalServerError, "storage failure")
		return
	}

	base := requestBaseURL(c)

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       "NewsFlow — " + slug,
			Link:        fmt.Sprintf("%s/q/%s", base, slug),
			Description: fmt.Sprintf("Itens recentes para '%s' (últimas %dh).", slug, hours),
			Items:       make([]rssItem, 0, len(articles)),
		},
	}

	for _, a := range articles {
		title := a.Title
		if title == "" {
			title = "(sem título)"
		}

		pub := a.PublishedAt
		if pub.IsZero() {
			pub = a.CreatedAt
		}

		// Lead image plus an attribution link back to the publisher.
		desc := ""
		if a.Image != "" {
			desc = fmt.Sprintf("<img src='%s' /><br/>", a.Image)
		}
		desc += fmt.Sprintf(`<a href="%s">Matéria Original</a>`, a.URL)

		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       title,
			Link:        fmt.Sprintf("%s/item/%s", base, a.ID),
			GUID:        rssGUID{IsPermaLink: "false", Value: a.ID},
			PubDate:     pub.UTC().Format(time.RFC1123Z),
			Description: rssCDATA{Text: desc},
		})
	}

	payload, err := xml.Marshal(doc)
	if err != nil {
		c.String(http.StatusInternalServerError, "feed encoding failure")
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8",
		append([]byte(xml.Header), payload...))
}

var itemTemplate = template.Must(template.New("item").Parse(`<!doctype html>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1"/>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Arial,Helvetica,Ubuntu;max-width:760px;margin:40px auto;padding:0 16px}
h1{line-height:1.25;margin:0 0 12px}
img{max-width:100%;height:auto;margin:16px 0;border-radius:6px}
p{line-height:1.7;font-size:1.06rem;margin:14px 0}
em a{color:#555;text-decoration:none}
</style>
<h1>{{if .Title}}{{.Title}}{{else}}Sem título{{end}}</h1>
{{if .Image}}<img src="{{.Image}}" alt="imagem">{{end}}
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}<p><em>Fonte: <a href="{{.URL}}" rel="nofollow noopener" target="_blank">Matéria Original</a></em></p>
`))

var keywordTemplate = template.Must(template.New("keyword").Parse(`<!doctype html>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1"/>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Arial,Helvetica,Ubuntu;max-width:860px;margin:40px auto;padding:0 16px}
li{margin:10px 0}a{text-decoration:none}
</style>
<h1>Resultados: {{.Slug}}</h1>
<ul>
{{range .Articles}}<li><a href="/item/{{.ID}}">{{.Title}}</a> — {{.SourceName}}</li>
{{end}}</ul>
`))

func (s *Server) handleItem(c *gin.Context) {
	article, err := s.storage.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<h1>Não encontrado</h1>"))
			return
		}
		s.log.Error("failed to load article", "id", c.Param("id"), "error", err)
		c.String(http.StatusInternalServerError, "storage failure")
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := itemTemplate.Execute(c.Writer, article); err != nil {
		s.log.Error("failed to render article", "id", article.ID, "error", err)
	}
}

func (s *Server) handleKeywordPage(c *gin.Context) {
	slug := c.Param("slug")
	hours := clampHours(c.Query("hours"))
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	articles, err := s.storage.ListByKeyword(c.Request.Context(), slug, since)
	if err != nil {
		s.log.Error("failed to list articles", "slug", slug, "error", err)
		c.String(http.StatusInternalServerError, "storage failure")
		return
	}

	if len(articles) == 0 {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8",
			[]byte("<h1>Nada encontrado</h1><p>Use POST /crawl ou /add.</p>"))
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = keywordTemplate.Execute(c.Writer, struct {
		Slug     string
		Articles []domain.Article
	}{Slug: slug, Articles: articles})
	if err != nil {
		s.log.Error("failed to render listing", "slug", slug, "error", err)
	}
}

// requestBaseURL reconstructs the externally visible base URL for links in
// generated feeds.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
