package domain

// Draft is article text pulled from a published page.
type Draft struct {
	URL    string
	Title  string
	Text   string
	Source string
}

// Input converts the draft into an evaluation input. A non-empty title
// override wins over the extracted page title.
func (d Draft) Input(titleOverride string) ArticleInput {
	title := d.Title
	if titleOverride != "" {
		title = titleOverride
	}
	return ArticleInput{Text: d.Text, Title: title}
}
