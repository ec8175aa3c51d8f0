package pipeline

import (
	"strings"
	"text/template"
)

const (
	StartMarker        = "FORMATTED_SUBTITLES:"
	EndMarker          = "END_OF_SUBTITLES"
	TerminationKeyword = "TERMINATE"
	LookupDirective    = "LOOKUP:"
)

// promptData is everything the role prompts are rendered with.
type promptData struct {
	SourceLanguage string
	TargetLanguage string
	MaxLines       int
	MaxLineLength  int
	MaxLookupWords int
	Original       string
	Translated     string
	Feedback       string
	StartMarker    string
	EndMarker      string
	Termination    string
	Lookup         string
}

const promptTemplates = `
{{define "task"}}Task: Translate and review SRT subtitle content from {{.SourceLanguage}} to {{.TargetLanguage}}.
The workflow is Subtitle_Translator -> Translation_Reviewer -> Subtitle_Formatter, coordinated by the User_Proxy.
Every chunk must keep the same number of subtitles, the same indices and the same timestamps as the original.{{end}}

{{define "translator_system"}}{{template "task" .}}

You are the Subtitle_Translator.
- Translate the subtitle text from {{.SourceLanguage}} to {{.TargetLanguage}}.
- Ensure translations are contextually accurate and sound natural.
- Prioritize conveying meaning over literal translations to make the subtitles natural in the target language.
- Maintain the tone and register of the original language.
- Ensure the number of subtitles, their indices, and timestamps match the original content.
- Retain any HTML tags present in the original subtitle texts.
- Dictionary lookups: only for uncommon, difficult, or idiomatic words you need more context for, never for common words.
  To request them, reply with a single line "{{.Lookup}} word1, word2" (at most {{.MaxLookupWords}} words) and nothing else.
  If a definition reads "plural of", "gerund of" or "present participle of", look up the stem of the word instead.
- Once you are ready, reply with the translated subtitles only, in SRT format, without commentary and without any mention of lookups.{{end}}

{{define "translator_task"}}Original SRT content in {{.SourceLanguage}}:
{{.Original}}
Translate it to {{.TargetLanguage}}.{{end}}

{{define "lookup_reply"}}{{.Feedback}}

Use these definitions to make the translation more accurate. Reply with the translated subtitles only.{{end}}

{{define "reviewer_system"}}{{template "task" .}}

You are the Translation_Reviewer.
- Review the translated subtitles against the original subtitles for translation issues or areas of improvement.
- Focus exclusively on the quality of the translation.
- Do not alter subtitle indices or timestamps.
- Correct translations where necessary.
- Reply with the complete reviewed translated subtitles only, in SRT format, without commentary.{{end}}

{{define "reviewer_task"}}Original subtitles ({{.SourceLanguage}}):
{{.Original}}
Translated subtitles ({{.TargetLanguage}}):
{{.Translated}}{{end}}

{{define "formatter_system"}}{{template "task" .}}

You are the Subtitle_Formatter.
The translated subtitles you receive were already reflowed by the format_subtitles tool; their alignment is checked by verify_alignment after your reply.
Ensure the translated subtitles maintain the original SRT format and subtitle count:
  a) Preserve line breaks.
  b) Keep the same original subtitle numbering in the translated subtitles.
  c) Ensure that the original and translated subtitles have an identical number of subtitles.
  d) Ensure that subtitle indices match exactly between the original and translated subtitles.
  e) Limit to a maximum of {{.MaxLines}} lines per subtitle.
  f) Restrict each line of the subtitle to a maximum of {{.MaxLineLength}} characters, if possible.
  g) Ensure that for each subtitle, the number of lines matches the original.
  h) Retain any HTML tags present in the original subtitle texts.
Begin your response with '{{.StartMarker}}' and end the subtitles with '{{.EndMarker}}'.
After providing the formatted subtitles, reply with '{{.Termination}}'.{{end}}

{{define "formatter_task"}}Original subtitles:
{{.Original}}
Translated subtitles:
{{.Translated}}{{end}}

{{define "unparsable_feedback"}}The subtitles you returned could not be parsed: {{.Feedback}}
Reply with the complete corrected SRT content only.{{end}}

{{define "missing_markers_feedback"}}Your reply did not contain the formatted subtitles between '{{.StartMarker}}' and '{{.EndMarker}}'.
Reply again with the formatted subtitles wrapped in these markers, followed by '{{.Termination}}'.{{end}}

{{define "alignment_feedback"}}verify_alignment reported a problem: {{.Feedback}}
Fix the formatted subtitles so that every subtitle keeps the original index and timestamps, and reply again between '{{.StartMarker}}' and '{{.EndMarker}}', followed by '{{.Termination}}'.{{end}}
`

var prompts = template.Must(template.New("prompts").Parse(promptTemplates))

func render(name string, data promptData) string {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		// templates are static; a failure here is a programming error
		panic(err)
	}
	return strings.TrimSpace(b.String())
}
