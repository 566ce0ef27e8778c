package utils

import "regexp"

// URLPattern matches http(s) URLs embedded in free text. The Gmail
// extractor and the mail gateway body scanner both scan with it so a link
// scores the same regardless of which path saw the message.
var URLPattern = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
