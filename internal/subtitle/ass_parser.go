package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

const dialoguePrefix = "dialogue:"

// Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text. Only the
// first nine commas split fields, the text keeps its own commas.
var dialogueRegex = regexp.MustCompile(
	`^([^,]*),([^,]*),([^,]*),([^,]*),([^,]*),([^,]*),([^,]*),([^,]*),([^,]*),(.*)$`,
)

var overrideTagRegex = regexp.MustCompile(`\{[^}]*\}`)

var assEscapeReplacer = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ")

// parseASS keeps only Dialogue lines; everything else in the script is
// styling the player does not need.
func parseASS(content string) ([]Entry, error) {
	var entries []Entry

	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if len(line) < len(dialoguePrefix) ||
			!strings.EqualFold(line[:len(dialoguePrefix)], dialoguePrefix) {
			continue
		}
		body := strings.TrimSpace(line[len(dialoguePrefix):])

		entry, err := parseDialogue(body, len(entries)+1)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Err: err}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseDialogue(body string, counter int) (Entry, error) {
	fields := dialogueRegex.FindStringSubmatch(body)
	if fields == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedDialogueLine, body)
	}

	start, err := ParseTimecode(fields[2], TimecodeASS)
	if err != nil {
		return Entry{}, err
	}
	end, err := ParseTimecode(fields[3], TimecodeASS)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Counter: counter,
		Start:   start,
		End:     end,
		Lines:   cleanDialogueText(fields[10]),
	}, nil
}

func cleanDialogueText(text string) []string {
	text = overrideTagRegex.ReplaceAllString(text, "")
	text = stripDirectionalMarks(text)
	text = assEscapeReplacer.Replace(text)

	parts := strings.Split(text, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, strings.TrimSpace(p))
	}
	return lines
}
