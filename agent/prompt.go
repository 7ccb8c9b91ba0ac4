package agent

import (
	"fmt"
	"strings"

	"github.com/samalabs/sama/tool"
)

// Language selects the textual content of the system prompt. It affects
// wording only, never logic.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// PromptParams are the inputs to BuildSystemPrompt.
type PromptParams struct {
	AgentName        string
	Language         Language
	Workspace        string
	Tools            []tool.Tool
	FilesSummary     string
	RecentOperations string
}

// BuildSystemPrompt renders the system message from the active tool set and
// the current workspace context. It is a pure function with no state; the
// agent re-invokes it whenever the tool set or file context changes.
func BuildSystemPrompt(p PromptParams) string {
	name := p.AgentName
	if name == "" {
		name = "SAMA"
	}
	if p.Language == LanguageChinese {
		return buildChinesePrompt(name, p)
	}
	return buildEnglishPrompt(name, p)
}

func buildEnglishPrompt(name string, p PromptParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a capable assistant that solves tasks step by step using the tools available to you.\n\n", name)

	b.WriteString("Before acting, reason inside <thinking></thinking> tags, then either call a tool or give your final answer. ")
	b.WriteString("Call tools only when they are needed; answer directly when you already know. ")
	b.WriteString("When a tool fails, read its error message and adapt instead of repeating the same call.\n")

	if len(p.Tools) > 0 {
		b.WriteString("\nAvailable tools:\n")
		for _, t := range p.Tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
		}
	}

	if p.Workspace != "" {
		fmt.Fprintf(&b, "\nWorkspace directory: %s\nFile operations are confined to this directory.\n", p.Workspace)
	}

	if p.FilesSummary != "" {
		fmt.Fprintf(&b, "\nFiles in context:\n%s\n", p.FilesSummary)
	}

	if p.RecentOperations != "" {
		fmt.Fprintf(&b, "\nRecent tool operations: %s\n", p.RecentOperations)
	}

	return strings.TrimRight(b.String(), "\n")
}

func buildChinesePrompt(name string, p PromptParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "你是 %s，一个能够使用工具逐步解决任务的智能助手。\n\n", name)

	b.WriteString("行动之前，请在 <thinking></thinking> 标签内进行推理，然后调用工具或给出最终答案。")
	b.WriteString("只在必要时调用工具；已经知道答案时直接回答。")
	b.WriteString("工具执行失败时，请阅读错误信息并调整策略，不要重复同样的调用。\n")

	if len(p.Tools) > 0 {
		b.WriteString("\n可用工具：\n")
		for _, t := range p.Tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
		}
	}

	if p.Workspace != "" {
		fmt.Fprintf(&b, "\n工作目录：%s\n文件操作仅限于该目录。\n", p.Workspace)
	}

	if p.FilesSummary != "" {
		fmt.Fprintf(&b, "\n当前跟踪的文件：\n%s\n", p.FilesSummary)
	}

	if p.RecentOperations != "" {
		fmt.Fprintf(&b, "\n最近的工具操作：%s\n", p.RecentOperations)
	}

	return strings.TrimRight(b.String(), "\n")
}
