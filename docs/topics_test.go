package docs_test

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/accounts/cmd"
	"github.com/etnz/accounts/docs"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	for _, topic := range listed {
		if _, err := docs.GetTopic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}
	all, err := docs.GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}

	content, err := docs.GetTopics("*")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(content, "# Importing bank exports") {
		t.Errorf("GetTopics(*) misses the import topic")
	}
}

// TestCommands checks that the examples only use existing subcommands.
func TestCommands(t *testing.T) {
	known := map[string]bool{"help": true, "flags": true}
	for _, c := range cmd.Commands {
		known[c.Name()] = true
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		for _, line := range commandLines(t, file) {
			fields := strings.Fields(line)
			// skip global flags and their values.
			i := 1
			for i < len(fields) && strings.HasPrefix(fields[i], "-") {
				i += 2
			}
			if i >= len(fields) || !known[fields[i]] {
				t.Errorf("%s: %q uses an unknown subcommand", file, line)
			}
		}
	}
}

// commandLines returns the "$ acc ..." lines of the bash blocks of file.
func commandLines(t *testing.T, file string) []string {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var lines []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || string(fcb.Language(content)) != "bash" {
			return ast.WalkContinue, nil
		}
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			s := strings.TrimSpace(string(line.Value(content)))
			if strings.HasPrefix(s, "$ acc ") {
				lines = append(lines, strings.TrimPrefix(s, "$ "))
			}
		}
		return ast.WalkContinue, nil
	})
	return lines
}
