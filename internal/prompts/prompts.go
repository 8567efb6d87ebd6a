// Package prompts holds the per-source prompt templates used for
// summarization and retrieval QA.
package prompts

// Generator yields the summarization templates for one document source.
// StuffTemplate carries a single %s verb for the concatenated corpus;
// RetrievalQuestion is issued as a query against the index instead.
type Generator interface {
	Source() string
	StuffTemplate() string
	RetrievalQuestion() string
}

const structuredOutputInstructions = `Format the output as a JSON object with exactly the following keys and do not forget the curly brackets.

* summary
* q1
* q2
* q3
`

// RedditGenerator emphasizes highly upvoted submissions and high-karma
// authors, mirroring how reddit surfaces signal.
type RedditGenerator struct{}

func NewRedditGenerator() RedditGenerator { return RedditGenerator{} }

func (RedditGenerator) Source() string { return "reddit" }

func (RedditGenerator) StuffTemplate() string {
	return `Given the following reddit submissions

%s

I want you to provide a short summary and produce three questions that cover the discussed topics.
Each question should find its answer within the submissions. Don't invent questions that have no answers.
Put emphasis on submissions with high upvotes and authors with high karma.
Questions should also be very different from each other and discuss topics that are not necessarily present in the summary.

` + structuredOutputInstructions
}

func (RedditGenerator) RetrievalQuestion() string {
	return `Given the following documents, I want you to provide a short summary and produce three questions that cover the discussed topics.
Each question should find its answer within the documents. Don't invent questions that have no answers.
Put emphasis on submissions with high upvotes and authors with high karma.
Questions should also be very different from each other and discuss topics that are not necessarily present in the summary.

` + structuredOutputInstructions
}
