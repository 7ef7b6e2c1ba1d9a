package app

import "github.com/GNiklasch/GWO-glitch-visualization/internal/gpstime"

// Link is one footer credit: Prefix followed by a link labelled Text.
type Link struct {
	Prefix string `json:"prefix"`
	Text   string `json:"text"`
	URL    string `json:"url"`
}

// Footer closes every page.
type Footer struct {
	Links     []Link `json:"links"`
	Refreshed string `json:"refreshed"`
}

var footerLinks = []Link{
	{Prefix: "View the", Text: "source code on GitHub", URL: "https://github.com/GNiklasch/GWO-glitch-visualization"},
	{Prefix: "Inspired by", Text: "GW Quickview", URL: "https://github.com/jkanner/streamlit-dataview/"},
	{Prefix: "Fed with", Text: "data", URL: "https://gwosc.org/data/"},
	{Prefix: "hosted by the", Text: "GWOSC", URL: "https://gwosc.org/"},
}

func newFooter() Footer {
	return Footer{Links: footerLinks, Refreshed: gpstime.NowISOT()}
}

// Text renders the refresh line.
func (f Footer) Text() string {
	return "Page refreshed " + f.Refreshed + " UTC."
}
