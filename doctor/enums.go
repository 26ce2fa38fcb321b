package doctor

import "strings"

// fixEnums removes the trailing comma generators like to put after enum
// variants. Ralph enum bodies are newline separated, so each interior line
// of an enum block loses at most one comma. Nothing outside enum blocks is
// touched.
func fixEnums(src string) string {
	lines := strings.Split(src, "\n")
	inEnum := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inEnum {
			if strings.HasPrefix(trimmed, "enum ") && strings.HasSuffix(trimmed, "{") {
				inEnum = true
			}
			continue
		}
		if trimmed == "}" {
			inEnum = false
			continue
		}
		if strings.HasSuffix(strings.TrimRight(line, " \t\r"), ",") {
			if idx := strings.LastIndexByte(line, ','); idx != -1 {
				lines[i] = line[:idx] + line[idx+1:]
			}
		}
	}
	return strings.Join(lines, "\n")
}
