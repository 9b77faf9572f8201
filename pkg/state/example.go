// example.go - Sample documents for poststencil init.
package state

import "encoding/json"

// ExampleJSON returns a sample state and a sample data override document.
func ExampleJSON() (stateJSON, dataJSON string) {
	st := Default()
	st.Post.Style.Image.Src = "https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?w=1600"
	st.Post.Style.Headline.Text = "The [mountains] are {calling}"
	st.Post.Style.Caption.Text = "Five trails worth the early alarm."
	st.Post.Style.Dots.Count = 4
	st.Post.Style.Dots.Active = 1

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		panic(err) // Default is always encodable
	}
	stateJSON = string(b)

	dataJSON = `{
  "post": {
    "template": "t4",
    "t4": {
      "category": { "text": "UPDATE" },
      "headline": { "text": "Trail [reopens] after storm" },
      "source": { "text": "Source: Parks Service" }
    }
  }
}`
	return
}
