package entities

import "encoding/xml"

// SitemapURL is one <url> element of a sitemap document.
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// URLSet is the <urlset> root of a sitemap document, per the sitemap protocol.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapXMLNS is the sitemap protocol namespace.
const SitemapXMLNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
