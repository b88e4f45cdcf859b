package usecase

import "wikiukbot/internal/domain/model"

// RandomItemID is the result id of the random branch; it never carries a page id.
const RandomItemID = "random"

// PresentSearchResult turns one search hit into an inline result whose shared message is
// the article title linked to the article.
func PresentSearchResult(r model.SearchResult, articleBase string) model.InlineResultItem {
	return model.InlineResultItem{
		ID:          model.PageIDString(r.PageID),
		Title:       r.Title,
		Description: r.Description,
		Thumbnail:   r.Thumbnail,
		Share:       model.LinkedTitle(r.Title, model.ArticleURL(articleBase, r.Title)),
	}
}

// PresentRandomArticle builds the single item of the random branch.
func PresentRandomArticle(ref model.RandomArticleRef, articleBase, title, description string) model.InlineResultItem {
	return model.InlineResultItem{
		ID:          RandomItemID,
		Title:       title,
		Description: description,
		Share:       model.LinkedTitle(ref.Title, ref.Link(articleBase)),
	}
}
