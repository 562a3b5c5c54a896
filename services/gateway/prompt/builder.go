// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prompt composes the textual prompts sent to the model backend.
//
// Two fixed templates exist: the answer template, which wraps the user's
// question in a <question> tag and appends any custom instruction text
// verbatim, and the topic-extraction template, which instructs the model to
// emit a constrained <topics><topic> XML list and nothing else.
//
// The tags are a plain-text convention, not an enforced schema: user text is
// embedded verbatim, so a question containing the literal delimiter strings
// can alter how the receiving model reads the template. Known limitation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianGateway/services/gateway/datatypes"
)

const answerTemplate = `<question>
    %s
</question>

%s
`

const topicTemplate = `<question>
    %s
</question>

Return a list of all the topics, keywords, and common synonyms in the context of the question that this <question> is asking about.

Format the output as XML. Return only the XML and nothing else.

<topics>
    <topic>[topics and keywords of the question]</topic>
</topics>
`

// Answer builds the answer prompt: the question wrapped in the structural
// tag, followed by the verbatim custom instruction text (may be empty).
func Answer(question, instructions string) string {
	return fmt.Sprintf(answerTemplate, question, instructions)
}

// AnswerWithContext builds the answer prompt with retrieved document context
// folded in after the instruction text, one block per document in rank order.
func AnswerWithContext(question, instructions string, docs []datatypes.RetrievedDocument) string {
	if len(docs) == 0 {
		return Answer(question, instructions)
	}

	var context strings.Builder
	context.WriteString("The following documents may help answer the question:\n")
	for i, doc := range docs {
		context.WriteString(fmt.Sprintf("\n[Document %d: %s (%s)]\n%s\n",
			i+1, doc.DocumentName, doc.Location, doc.Content))
	}

	combined := instructions
	if combined != "" {
		combined += "\n\n"
	}
	combined += context.String()

	return fmt.Sprintf(answerTemplate, question, combined)
}

// TopicExtraction builds the fixed topic-extraction prompt for the question.
// The template constrains the output format so the response can be parsed as
// a <topics> list.
func TopicExtraction(question string) string {
	return fmt.Sprintf(topicTemplate, question)
}
