// =============================================================================
// 📦 测试数据工厂 - 模型响应与元素规范
// =============================================================================
// 提供预定义的模型响应、带标记的样例输出和思维流程，用于测试
// =============================================================================
package fixtures

import (
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/synthdoc/extract"
	"github.com/BaSui01/synthdoc/llm"
	"github.com/BaSui01/synthdoc/specinput"
	"github.com/BaSui01/synthdoc/workflow"
)

// 默认流程使用的标记
const (
	SampleStart      = "[START DATA SAMPLE]"
	SampleEnd        = "[END DATA SAMPLE]"
	ExplanationStart = "[START EXPLANATION]"
	ExplanationEnd   = "[END EXPLANATION]"
)

// =============================================================================
// 🎯 ChatResponse 工厂
// =============================================================================

// SimpleResponse 返回简单的文本响应
func SimpleResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:       "resp-001",
		Provider: "mock",
		Model:    "mock-model",
		Choices: []llm.ChatChoice{
			{
				Index:        0,
				FinishReason: "stop",
				Message: llm.Message{
					Role:    llm.RoleAssistant,
					Content: content,
				},
			},
		},
		Usage: llm.ChatUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
		CreatedAt: time.Now(),
	}
}

// ResponseWithUsage 返回带自定义 Token 使用量的响应
func ResponseWithUsage(content string, promptTokens, completionTokens int) *llm.ChatResponse {
	resp := SimpleResponse(content)
	resp.Usage = llm.ChatUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
	return resp
}

// EmptyResponse 返回没有任何 choice 的响应
func EmptyResponse() *llm.ChatResponse {
	return &llm.ChatResponse{ID: "resp-empty", Provider: "mock", Model: "mock-model"}
}

// =============================================================================
// 🏷️ 带标记的文本
// =============================================================================

// Marked 用 start/end 标记包裹内容
func Marked(start, end, content string) string {
	return start + "\n" + content + "\n" + end
}

// SampleResponse 返回默认流程格式的模型输出：样例文档加说明
func SampleResponse(doc, explanation string) string {
	var b strings.Builder
	b.WriteString("Here is the document.\n\n")
	b.WriteString(Marked(SampleStart, SampleEnd, doc))
	b.WriteString("\n\n")
	b.WriteString(Marked(ExplanationStart, ExplanationEnd, explanation))
	b.WriteString("\n")
	return b.String()
}

// SampleResponses 生成 n 个互不相同的样例响应，文档内容为 <doc n="i"/>
func SampleResponses(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = SampleResponse(fmt.Sprintf(`<doc n="%d"/>`, i+1), fmt.Sprintf("attempt %d", i+1))
	}
	return out
}

// =============================================================================
// 📋 元素规范
// =============================================================================

// InvoiceRecords 返回一个小型发票文档的元素规范
func InvoiceRecords() specinput.Records {
	return specinput.Records{
		{
			XPath:       "/Invoice",
			Name:        "Invoice",
			Description: "Root element of the invoice.",
		},
		{
			XPath:           "/Invoice/ID",
			Name:            "Invoice number",
			Description:     "Unique identifier assigned by the seller.",
			Format:          "string",
			Characteristics: "mandatory",
		},
		{
			XPath:           "/Invoice/IssueDate",
			Name:            "Issue date",
			Description:     "Date the invoice was issued.",
			Format:          "YYYY-MM-DD",
			Characteristics: "mandatory",
		},
		{
			XPath:       "/Invoice/Note",
			Name:        "Note",
			Description: "Free text note.",
			Format:      "string",
			Extra:       map[string]any{"cardinality": "0..n"},
		},
	}
}

// InvoiceSpecJSON 返回 InvoiceRecords 的 JSON 文本
func InvoiceSpecJSON() string {
	data, err := InvoiceRecords().JSON()
	if err != nil {
		panic(err)
	}
	return data
}

// =============================================================================
// 🧠 思维流程
// =============================================================================

// SingleStageProcess 返回只有一个 thinker stage 的流程，输出字段为 sample
func SingleStageProcess(name string) workflow.ThoughtProcess {
	return workflow.ThoughtProcess{
		Name:        name,
		OutputField: "sample",
		Stages: []workflow.StageSpec{
			{
				Name:     "draft",
				Template: "Write a <!documentType!> document for:\n<!specification!>",
				Rules: []extract.Rule{
					{Start: SampleStart, End: SampleEnd, Field: "sample", Transform: extract.TransformTrim},
					{Start: ExplanationStart, End: ExplanationEnd, Field: "explanation", Transform: extract.TransformTrim},
				},
			},
		},
	}
}

// RepairProcess 返回读取 currentArtifact 与 errorReport 的修复流程
func RepairProcess(name string) workflow.ThoughtProcess {
	return workflow.ThoughtProcess{
		Name:        name,
		OutputField: "sample",
		Stages: []workflow.StageSpec{
			{
				Name:     "repair",
				Template: "Fix this document:\n<!currentArtifact!>\nProblems:\n<!errorReport!>",
				Rules: []extract.Rule{
					{Start: SampleStart, End: SampleEnd, Field: "sample", Transform: extract.TransformTrim},
				},
			},
		},
	}
}
