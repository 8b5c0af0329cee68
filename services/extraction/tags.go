package extraction

import "strings"

// Tag is a line label the language model is asked to emit, e.g. "NAME".
type Tag string

const (
	TagIntent      Tag = "INTENT"
	TagName        Tag = "NAME"
	TagEmail       Tag = "EMAIL"
	TagDate        Tag = "DATE"
	TagTime        Tag = "TIME"
	TagTitle       Tag = "TITLE"
	TagDescription Tag = "DESCRIPTION"
	TagConfirm     Tag = "CONFIRM"
)

var knownTags = map[Tag]bool{
	TagIntent: true, TagName: true, TagEmail: true, TagDate: true,
	TagTime: true, TagTitle: true, TagDescription: true, TagConfirm: true,
}

var fieldTags = map[Field]Tag{
	FieldIntent:       TagIntent,
	FieldName:         TagName,
	FieldEmail:        TagEmail,
	FieldDate:         TagDate,
	FieldTime:         TagTime,
	FieldTitle:        TagTitle,
	FieldDescription:  TagDescription,
	FieldConfirmation: TagConfirm,
}

// TagFor returns the tag carrying field.
func TagFor(field Field) (Tag, bool) {
	t, ok := fieldTags[field]
	return t, ok
}

// TaggedReply is a model reply split into tagged values and remaining prose.
type TaggedReply struct {
	Values map[Tag]string
	Text   string
}

// Get returns the value recorded for tag.
func (r TaggedReply) Get(tag Tag) (string, bool) {
	v, ok := r.Values[tag]
	return v, ok
}

// ParseTagged reads "TAG: value" lines out of a model reply.
//
// A tag is recognised only at the start of a line (leading whitespace is
// ignored), matched case-insensitively against the known set. The first
// occurrence of a tag wins. Empty values and placeholders such as "none" or
// "n/a" are treated as absent. Every other line is kept as prose. Input that
// contains no tags yields an empty Values map, never an error.
func ParseTagged(reply string) TaggedReply {
	out := TaggedReply{Values: map[Tag]string{}}
	var prose []string

	for _, line := range strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n") {
		tag, value, ok := splitTagLine(line)
		if !ok {
			if t := strings.TrimSpace(line); t != "" {
				prose = append(prose, t)
			}
			continue
		}
		if value == "" {
			continue
		}
		if _, seen := out.Values[tag]; seen {
			continue
		}
		out.Values[tag] = value
	}

	out.Text = strings.Join(prose, "\n")
	return out
}

func splitTagLine(line string) (Tag, string, bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.IndexByte(trimmed, ':')
	if idx <= 0 {
		return "", "", false
	}
	key := trimmed[:idx]
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	tag := Tag(strings.ToUpper(key))
	if !knownTags[tag] {
		return "", "", false
	}
	return tag, cleanTagValue(trimmed[idx+1:]), true
}

func cleanTagValue(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.Trim(v, "\"'`")
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "none", "n/a", "na", "null", "nil", "unknown", "-":
		return ""
	}
	return v
}
