package service

import (
	"regexp"
	"strings"

	"github.com/crehm/artflow/internal/models"
)

// WebsiteURL is the promotional footer appended to every post.
const WebsiteURL = "artbychristopherrehm.com"

var baseHashtags = []string{"#art", "#artforsale"}

var (
	emphasisPattern   = regexp.MustCompile(`\*{1,2}(.+?)\*{1,2}`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonAlnumPattern   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// FormatPostText builds the canonical post text for a content item:
//
//	Painting Title
//
//	Short description (truncated to maxWords)
//
//	#art #artforsale #subject
//	artbychristopherrehm.com
//
// Pure function: no I/O, identical input yields identical output.
func FormatPostText(item *models.ContentItem, maxWords int) string {
	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	parts := []string{title}
	if desc := TruncateDescription(item.Description, maxWords); desc != "" {
		parts = append(parts, desc)
	}
	parts = append(parts, buildHashtags(item.Subject)+"\n"+WebsiteURL)

	return strings.Join(parts, "\n\n")
}

// TruncateDescription strips emphasis markup, collapses whitespace runs and
// keeps at most maxWords words, appending "..." when anything was cut.
func TruncateDescription(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	plain := emphasisPattern.ReplaceAllString(text, "$1")
	plain = strings.TrimSpace(whitespacePattern.ReplaceAllString(plain, " "))

	words := strings.Fields(plain)
	if len(words) <= maxWords {
		return plain
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

// SubjectToHashtag lowercases the subject and strips everything that is not
// alphanumeric: "Sea Beasties on Titan" -> "#seabeastiesontitan".
func SubjectToHashtag(subject string) string {
	tag := strings.ToLower(nonAlnumPattern.ReplaceAllString(subject, ""))
	if tag == "" {
		return ""
	}
	return "#" + tag
}

func buildHashtags(subject string) string {
	tags := make([]string, len(baseHashtags))
	copy(tags, baseHashtags)

	if subjectTag := SubjectToHashtag(subject); subjectTag != "" {
		duplicate := false
		for _, tag := range tags {
			if tag == subjectTag {
				duplicate = true
				break
			}
		}
		if !duplicate {
			tags = append(tags, subjectTag)
		}
	}
	return strings.Join(tags, " ")
}
