package mcpserver

// DocumentFormatContract describes the canonical Markdown document format
// that catalog files follow. LLM consumers should read it before
// interpreting metadata or chapter boundaries.
const DocumentFormatContract = `# Folios Document Format Contract

Every Markdown document stored in the catalog follows this structure.

## File naming

` + "```" + `
{id}_v{version}.md
` + "```" + `

- ` + "`" + `id` + "`" + ` is a decimal document identifier (e.g. ` + "`" + `42` + "`" + `).
- ` + "`" + `version` + "`" + ` is a decimal version number starting at 1.
- Each version is a separate immutable file; ` + "`" + `42_v3.md` + "`" + ` is version 3 of document 42.
- Files not matching this pattern are ignored by the catalog.

## Structure

` + "```" + `markdown
---
author: Jane Doe                    # OPTIONAL - defaults to NA
date: 2025-01-15                    # OPTIONAL - defaults to NA
status: draft                       # OPTIONAL - used by list filters
document_type: report               # OPTIONAL - used by list filters
---

# Document Title

Free-form introduction before the first chapter. This region is
addressable as the synthetic "Metadata" chapter.

## First Chapter

Chapter content.

## Second Chapter

More content.
` + "```" + `

## Rules

1. **Frontmatter is delimited by ` + "`" + `---` + "`" + ` fences.** Keys are simple
   ` + "`" + `key: value` + "`" + ` pairs; nested YAML is not interpreted. A file without
   frontmatter is treated as having none.
2. **A level-1 heading (` + "`" + `# Title` + "`" + `) is required.** The first one found
   is the document title.
3. **Chapters are level-2 headings (` + "`" + `## Name` + "`" + `).** Deeper headings
   belong to the enclosing chapter.
4. **The "Metadata" chapter is synthetic.** It spans from the first line of
   the file to the line before the first ` + "`" + `##` + "`" + ` heading and always exists.
5. **Unknown frontmatter keys are preserved** and surfaced through metadata
   and list filters.
6. **Encoding** is UTF-8.
`
