package discovery

import "strings"

// ParseTXT parses one raw TXT string into a key/value mapping.
//
// avahi-browse prints TXT data as whitespace-separated quoted tokens:
//
//	"pv=1.0" "md=Elgato Key Light 20GAK9901" "id=FF:6A:9D:30:B1:6E"
//
// while zeroconf hands over bare "key=value" strings. Both forms are
// accepted. Malformed tokens (missing '=', unmatched quote) are skipped
// individually; partial metadata is preferable to losing the instance.
func ParseTXT(raw string) map[string]string {
	meta := make(map[string]string)

	for _, token := range splitTXTTokens(raw) {
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			continue
		}
		meta[key] = value
	}

	return meta
}

// splitTXTTokens tokenizes a TXT string into its key=value tokens,
// honoring double quotes. A token with an unmatched quote is dropped.
func splitTXTTokens(raw string) []string {
	var tokens []string

	i := 0
	for i < len(raw) {
		// Skip whitespace between tokens
		if raw[i] == ' ' || raw[i] == '\t' {
			i++
			continue
		}

		if raw[i] == '"' {
			end := strings.IndexByte(raw[i+1:], '"')
			if end < 0 {
				// Unmatched quote: discard the rest of the string
				break
			}
			tokens = append(tokens, raw[i+1:i+1+end])
			i += end + 2
			continue
		}

		end := strings.IndexAny(raw[i:], " \t")
		if end < 0 {
			tokens = append(tokens, raw[i:])
			break
		}
		tokens = append(tokens, raw[i:i+end])
		i += end
	}

	return tokens
}
