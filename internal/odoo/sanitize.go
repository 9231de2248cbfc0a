package odoo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	genericErrorMessage = "An error occurred while processing your request"
	redacted            = "***"
)

type messageMapping struct {
	pattern *regexp.Regexp
	format  string
}

// Checked in order; the first match replaces the whole message. Formats with
// a verb receive the first capture group.
var messageMappings = []messageMapping{
	{regexp.MustCompile(`(?i)invalid field\s+['"]?([a-zA-Z_][\w.]*)['"]?\s+in leaf`), "Invalid field '%s' in search criteria"},
	{regexp.MustCompile(`(?i)field\s+['"]?(\w+)['"]?\s+does not exist`), "Field '%s' does not exist on this model"},
	{regexp.MustCompile(`(?i)unknown field\s+['"]?([\w.]+)['"]?\s+in domain`), "Unknown field '%s' in search criteria"},
	{regexp.MustCompile(`(?i)model\s+['"]?([a-zA-Z_][\w.]*)['"]?\s+does not exist`), "Model '%s' is not available"},
	{regexp.MustCompile(`(?i)access denied on model`), "You don't have permission to access this model"},
	{regexp.MustCompile(`(?i)connection refused`), "Cannot connect to Odoo server"},
	{regexp.MustCompile(`(?i)invalid api key`), "Authentication failed: Invalid API key"},
	{regexp.MustCompile(`(?i)access denied`), "Permission denied for this operation"},
	{regexp.MustCompile(`(?i)record not found`), "The requested record does not exist"},
	{regexp.MustCompile(`(?i)record\s+(?:id\s+)?(\d+)\s+does not exist`), "Record ID %s not found"},
	{regexp.MustCompile(`(?i)invalid domain`), "Invalid search criteria format"},
	{regexp.MustCompile(`(?i)malformed domain`), "Search criteria is not properly formatted"},
}

type removal struct {
	pattern     *regexp.Regexp
	replacement string
}

// Fragments that expose server internals.
var removals = []removal{
	{regexp.MustCompile(`(?m)^\s*File "[^"]+", line \d+.*$`), ""},
	{regexp.MustCompile(`(File|file)\s*"[^"]+\.py"`), "file"},
	{regexp.MustCompile(`(/[^/\s]+)+/[^/\s]+\.py`), ""},
	{regexp.MustCompile(`,?\s*line\s+\d+`), ""},
	{regexp.MustCompile(`Traceback \(most recent call last\):`), ""},
	{regexp.MustCompile(`mcp_server_odoo\.[a-zA-Z_.]+:`), ""},
	{regexp.MustCompile(`odoo\.[a-zA-Z_.]+:`), ""},
	{regexp.MustCompile(`<class '[^']+'>`), ""},
	{regexp.MustCompile(`\s+at\s+0x[0-9a-fA-F]+`), ""},
	{regexp.MustCompile(`Object at\s+0x[0-9a-fA-F]+`), "Object"},
	{regexp.MustCompile(`in\s+<[^>]+>`), ""},
	{regexp.MustCompile(`in\s+[a-zA-Z_]+\(\)`), ""},
}

var (
	whitespace        = regexp.MustCompile(`\s+`)
	faultFieldPattern = regexp.MustCompile(`(?i)field\s+['"]?([a-zA-Z_][\w.]*)['"]?`)
	userErrorPattern  = regexp.MustCompile(`UserError\(["']([^"']+)["']`)
	exceptionLine     = regexp.MustCompile(`(?m)odoo\.exceptions\.(\w+):\s*(.+)$`)
)

// Sanitizer scrubs messages before they leave the process: configured
// credential values, file paths, line numbers, memory addresses and class
// names are removed and well-known backend errors are replaced with readable
// text.
type Sanitizer struct {
	secrets []string
}

// NewSanitizer returns a Sanitizer that additionally redacts every non-empty
// secret.
func NewSanitizer(secrets ...string) *Sanitizer {
	s := &Sanitizer{}
	for _, secret := range secrets {
		if secret != "" {
			s.secrets = append(s.secrets, secret)
		}
	}
	return s
}

// Redact replaces every configured secret in msg.
func (s *Sanitizer) Redact(msg string) string {
	if s == nil {
		return msg
	}
	for _, secret := range s.secrets {
		msg = strings.ReplaceAll(msg, secret, redacted)
	}
	return msg
}

// Message sanitizes a free-form error message.
func (s *Sanitizer) Message(msg string) string {
	msg = s.Redact(msg)
	if strings.TrimSpace(msg) == "" {
		return "An error occurred"
	}

	for _, m := range messageMappings {
		match := m.pattern.FindStringSubmatch(msg)
		if match == nil {
			continue
		}
		if strings.Contains(m.format, "%s") {
			return fmt.Sprintf(m.format, match[1])
		}
		return m.format
	}

	cleaned := msg
	for _, r := range removals {
		cleaned = r.pattern.ReplaceAllString(cleaned, r.replacement)
	}
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))

	if cleaned == "" || cleaned == "file" || utf8.RuneCountInString(cleaned) < 10 {
		return genericErrorMessage
	}
	return capitalize(cleaned)
}

// Fault sanitizes the fault string of an XML-RPC fault.
func (s *Sanitizer) Fault(fault string) string {
	fault = s.Redact(fault)

	switch {
	case strings.Contains(fault, "Access Denied"):
		return "Access denied: Invalid credentials or insufficient permissions"
	case strings.Contains(fault, "Object does not exist") || strings.Contains(fault, "doesn't exist"):
		return "The requested resource does not exist"
	case strings.Contains(fault, "Invalid field"):
		if m := faultFieldPattern.FindStringSubmatch(fault); m != nil {
			return fmt.Sprintf("Invalid field '%s' in request", m[1])
		}
		return "Invalid field in request"
	case strings.Contains(fault, "MissingError"):
		return "The requested record was not found"
	case strings.Contains(fault, "ValidationError"):
		if detail := exceptionDetail(fault, "ValidationError"); detail != "" {
			return "Validation error: " + s.Message(detail)
		}
		return "Validation error: Please check your input"
	case strings.Contains(fault, "UserError"):
		if m := userErrorPattern.FindStringSubmatch(fault); m != nil {
			return m[1]
		}
		if detail := exceptionDetail(fault, "UserError"); detail != "" {
			return s.Message(detail)
		}
		return "Operation failed due to business rule violation"
	default:
		return s.Message(fault)
	}
}

// exceptionDetail extracts the message of the last "odoo.exceptions.<kind>:"
// line of a server traceback.
func exceptionDetail(fault, kind string) string {
	matches := exceptionLine.FindAllStringSubmatch(fault, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i][1] == kind {
			return strings.TrimSpace(matches[i][2])
		}
	}
	return ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		return string(unicode.ToUpper(r)) + s[size:]
	}
	return s
}
