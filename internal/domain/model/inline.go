package model

// TextLink styles Length UTF-16 code units starting at Offset as a hyperlink.
type TextLink struct {
	Offset int
	Length int
	URL    string
}

// ShareText is what lands in the chat when the user picks a result.
type ShareText struct {
	Text  string
	Links []TextLink
}

// LinkedTitle renders title as a single link spanning all of it.
func LinkedTitle(title, link string) ShareText {
	return ShareText{
		Text:  title,
		Links: []TextLink{{Offset: 0, Length: UTF16Len(title), URL: link}},
	}
}

// InlineResultItem is a presentation-ready inline result.
type InlineResultItem struct {
	ID          string
	Title       string
	Description string
	Thumbnail   *Thumbnail
	Share       ShareText
}

// UIHint is the button shown above the results.
type UIHint struct {
	Label          string
	StartParameter string
}

// InlineAnswer is everything needed to answer one inline query.
type InlineAnswer struct {
	Items        []InlineResultItem
	Hint         *UIHint
	CacheSeconds int
}
