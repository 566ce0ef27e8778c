package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMailView() *Document {
	doc := NewDocument("https://mail.google.com/mail/u/0/#inbox/abc123")

	main := NewNode("div").SetAttr("role", "main")
	doc.Body().AppendChild(main)

	subject := NewNode("h2").SetAttr("data-thread-perm-id", "t1")
	subject.Text = "Invoice overdue"
	main.AppendChild(subject)

	container := NewNode("div").SetAttr("class", "ii gt")
	main.AppendChild(container)

	body := NewNode("div").SetAttr("class", "a3s aiL")
	body.Text = "Please pay immediately"
	container.AppendChild(body)

	link := NewNode("a").SetAttr("href", "https://pay.example/now")
	link.Text = "pay now"
	body.AppendChild(link)

	sender := NewNode("span").SetAttr("email", "billing@pay.example")
	sender.Text = "Billing"
	main.AppendChild(sender)

	return doc
}

func TestQuery_CompoundClassSelector(t *testing.T) {
	doc := buildMailView()

	node := doc.Query(".ii.gt")
	require.NotNil(t, node)
	assert.Equal(t, []string{"ii", "gt"}, node.Classes())

	assert.Nil(t, doc.Query(".ii.missing"))
}

func TestQuery_AttributeSelectors(t *testing.T) {
	doc := buildMailView()

	assert.NotNil(t, doc.Query("[email]"))
	assert.NotNil(t, doc.Query(`span[email]`))
	assert.NotNil(t, doc.Query(`[role="main"]`))
	assert.NotNil(t, doc.Query("h2[data-thread-perm-id]"))
	assert.Nil(t, doc.Query(`[role="banner"]`))
}

func TestQuery_SubstringAttributeSelector(t *testing.T) {
	doc := NewDocument("https://example.com")
	n := NewNode("span").SetAttr("title", "reply to user@example.com")
	doc.Body().AppendChild(n)

	assert.NotNil(t, doc.Query(`span[title*="@"]`))
	assert.Nil(t, doc.Query(`span[title*="nope"]`))
}

func TestQuery_DescendantCombinator(t *testing.T) {
	doc := buildMailView()

	node := doc.Query(`[role="main"] h2`)
	require.NotNil(t, node)
	assert.Equal(t, "Invoice overdue", node.Text)

	assert.NotNil(t, doc.Query(".ii.gt .a3s.aiL"))
	assert.Nil(t, doc.Query(".a3s.aiL h2"))
}

func TestQueryAll_CommaGroups(t *testing.T) {
	doc := buildMailView()

	nodes := doc.QueryAll("h2, span[email]")
	assert.Len(t, nodes, 2)
}

func TestQueryAll_ScopedToSubtree(t *testing.T) {
	doc := buildMailView()
	container := doc.Query(".ii.gt")
	require.NotNil(t, container)

	links := container.QueryAll("a[href]")
	require.Len(t, links, 1)
	assert.Equal(t, "https://pay.example/now", links[0].Attr("href"))

	// The subject lives outside the container.
	assert.Nil(t, container.Query("h2"))
}

func TestNode_RemoveIsIdempotent(t *testing.T) {
	doc := NewDocument("https://example.com")
	n := NewNode("div").SetAttr("id", "overlay")
	doc.Body().AppendChild(n)

	require.NotNil(t, doc.GetElementByID("overlay"))
	n.Remove()
	assert.Nil(t, doc.GetElementByID("overlay"))
	n.Remove() // no-op
	assert.Nil(t, n.Parent())
}

func TestNode_TextContentIncludesDescendants(t *testing.T) {
	doc := buildMailView()
	container := doc.Query(".ii.gt")
	require.NotNil(t, container)

	text := container.TextContent()
	assert.Contains(t, text, "Please pay immediately")
	assert.Contains(t, text, "pay now")
}
