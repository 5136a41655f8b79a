package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate command documentation",
		Long: `Generate markdown documentation for all available commands.
This command introspects the command registry and outputs the documentation
in markdown format, so the reference always matches the commands served over
MCP and available under "run".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	descriptors, err := catalog()
	if err != nil {
		return fmt.Errorf("failed to build command catalog: %w", err)
	}

	markdown := generateCommandsMarkdown(descriptors)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// serviceTitles orders and names the sections of the reference.
var serviceTitles = []struct {
	service string
	title   string
}{
	{"auth", "Authorization"},
	{"drive", "Google Drive"},
	{"sheets", "Google Sheets"},
	{"docs", "Google Docs"},
	{"slides", "Google Slides"},
	{"batch", "Batch"},
}

func generateCommandsMarkdown(descriptors []*dispatch.Descriptor) string {
	var sb strings.Builder

	sb.WriteString("# Command Reference\n\n")
	sb.WriteString("This document lists every command available as an MCP tool (`mcp-google-workspace serve`) ")
	sb.WriteString("and on the command line (`mcp-google-workspace run <command>`).\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the command registry.\n\n")

	byService := groupByService(descriptors)

	sections := make([]string, 0, len(byService))
	titles := make(map[string]string, len(byService))
	for _, st := range serviceTitles {
		if _, ok := byService[st.service]; ok {
			sections = append(sections, st.service)
			titles[st.service] = st.title
		}
	}
	var others []string
	for service := range byService {
		if _, ok := titles[service]; !ok {
			others = append(others, service)
			titles[service] = service
		}
	}
	sort.Strings(others)
	sections = append(sections, others...)

	sb.WriteString("## Table of Contents\n\n")
	for _, service := range sections {
		anchor := strings.ToLower(strings.ReplaceAll(titles[service], " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", titles[service], anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Current Spreadsheet\n\n")
	sb.WriteString("Commands that create or copy a spreadsheet make it the current spreadsheet. ")
	sb.WriteString("Sheets commands use it when `spreadsheet_id` is omitted.\n\n")

	for _, service := range sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", titles[service]))
		for _, desc := range byService[service] {
			sb.WriteString(generateCommandMarkdown(desc))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupByService(descriptors []*dispatch.Descriptor) map[string][]*dispatch.Descriptor {
	groups := make(map[string][]*dispatch.Descriptor)
	for _, desc := range descriptors {
		groups[desc.Service] = append(groups[desc.Service], desc)
	}
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
	}
	return groups
}

func generateCommandMarkdown(desc *dispatch.Descriptor) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", desc.Name))

	if desc.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", desc.Description))
	}
	if desc.ReadOnly {
		sb.WriteString("*Read-only.*\n\n")
	}

	if len(desc.Params) > 0 {
		sb.WriteString("**Arguments:**\n")
		for _, p := range desc.Params {
			requiredStr := "optional"
			if p.Required {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", p.Name, p.Type, requiredStr))
			if p.Description != "" {
				sb.WriteString(p.Description)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", p.Expected()))
			}
			if len(p.Enum) > 0 {
				sb.WriteString(fmt.Sprintf(". One of `%s`", strings.Join(p.Enum, "`, `")))
			}
			if p.Default != nil {
				sb.WriteString(fmt.Sprintf(". Default: `%v`", p.Default))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("```sh\n")
	sb.WriteString("mcp-google-workspace run " + desc.Name)
	for _, p := range desc.Params {
		if p.Required {
			sb.WriteString(fmt.Sprintf(" --%s <%s>", p.Name, p.Type))
		}
	}
	sb.WriteString("\n```\n")

	return sb.String()
}
