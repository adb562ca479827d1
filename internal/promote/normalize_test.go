package promote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeHTMLPrefersMainContainer(t *testing.T) {
	t.Parallel()

	raw := []byte(`<html><body>
		<nav>Home | Search | Contact</nav>
		<main>
			<h1>ADJ-100</h1>
			<p>The complainant   was employed
			by the respondent.</p>
			<script>trackPageView();</script>
		</main>
		<footer>© Workplace Relations Commission</footer>
	</body></html>`)

	text, err := NormalizeHTML(raw)
	require.NoError(t, err)
	require.Equal(t, "ADJ-100 The complainant was employed by the respondent.", string(text))
}

func TestNormalizeHTMLFallsBackThroughSelectors(t *testing.T) {
	t.Parallel()

	raw := []byte(`<html><body>
		<div class="main-content"><p>Decision body.</p></div>
		<aside>Sidebar noise</aside>
	</body></html>`)
	text, err := NormalizeHTML(raw)
	require.NoError(t, err)
	require.Equal(t, "Decision body.", string(text))

	raw = []byte(`<html><body><p>Whole page text only.</p></body></html>`)
	text, err = NormalizeHTML(raw)
	require.NoError(t, err)
	require.Equal(t, "Whole page text only.", string(text))
}

func TestNormalizeHTMLDropsScriptsAndStyles(t *testing.T) {
	t.Parallel()

	raw := []byte(`<html><head><style>body { color: red }</style></head>
	<body><p>Visible.</p><script>var hidden = 1;</script><noscript>Enable JS</noscript></body></html>`)
	text, err := NormalizeHTML(raw)
	require.NoError(t, err)
	require.Equal(t, "Visible.", string(text))
}

func TestNormalizeHTMLCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	raw := []byte("<main>one\n\ttwo   three four</main>")
	text, err := NormalizeHTML(raw)
	require.NoError(t, err)
	require.Equal(t, "one two three four", string(text))
}
