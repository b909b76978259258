package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// SpecialistFallback replaces any answer the completion provider could not give.
const SpecialistFallback = "A specialist will contact you shortly to assist further."

const systemPromptTemplate = "You're a friendly warranty expert assistant. Use this knowledge:\n%s\n\nCurrent context: %s"

// Topic names a knowledge excerpt.
type Topic string

const (
	TopicPlans    Topic = "plans"
	TopicCoverage Topic = "coverage"
	TopicClaims   Topic = "claims"
	TopicFAQ      Topic = "faq"
	TopicOverview Topic = "overview"
)

type knowledgeRule struct {
	topic    Topic
	keywords []string
}

// Evaluated in order; the first rule with a keyword in the question wins.
var knowledgeRules = []knowledgeRule{
	{TopicPlans, []string{"plan", "price", "cost", "monthly"}},
	{TopicCoverage, []string{"coverage", "included", "compare", "parts"}},
	{TopicClaims, []string{"claim", "repair", "shop", "approval", "mechanic"}},
	{TopicFAQ, []string{"how", "what if", "can i", "faq", "cancel"}},
}

// SelectTopic picks the knowledge topic for a question.
func SelectTopic(question string) Topic {
	q := strings.ToLower(question)
	for _, rule := range knowledgeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.topic
			}
		}
	}
	return TopicOverview
}

// Excerpt returns the knowledge text for topic. Plan details are narrowed to
// the tier named in the conversation context.
func Excerpt(topic Topic, conversationContext string) string {
	switch topic {
	case TopicPlans:
		switch {
		case strings.Contains(conversationContext, PlanWorksPlus.Name), strings.Contains(conversationContext, PlanWorks.Name):
			return planDetailsWorks
		case strings.Contains(conversationContext, PlanStandard.Name):
			return planDetailsStandard
		default:
			return planDetailsAll
		}
	case TopicCoverage:
		return coverageComparison
	case TopicClaims:
		return claimsInfo
	case TopicFAQ:
		return faqs
	default:
		return knowledgeOverview
	}
}

// SystemPrompt builds the instruction sent ahead of the customer's question.
func SystemPrompt(question, conversationContext string) string {
	excerpt := Excerpt(SelectTopic(question), conversationContext)
	return fmt.Sprintf(systemPromptTemplate, excerpt, conversationContext)
}

// Completer produces an answer to question given a system instruction.
type Completer interface {
	Complete(ctx context.Context, question, systemPrompt string) (string, error)
}

// KnowledgeService answers customer questions from the warranty knowledge base.
type KnowledgeService struct {
	completer Completer
}

func NewKnowledgeService(completer Completer) *KnowledgeService {
	return &KnowledgeService{completer: completer}
}

// Answer never fails: provider errors and unhelpful answers become SpecialistFallback.
func (k *KnowledgeService) Answer(ctx context.Context, question, conversationContext string) string {
	if k.completer == nil {
		return SpecialistFallback
	}

	topic := SelectTopic(question)
	log.Debugf("💡 Answering question with %s knowledge", topic)

	answer, err := k.completer.Complete(ctx, question, SystemPrompt(question, conversationContext))
	if err != nil {
		log.Errorf("❌ AI response error: %v", err)
		return SpecialistFallback
	}

	answer = strings.TrimSpace(answer)
	if answer == "" || strings.Contains(answer, "trouble") {
		return SpecialistFallback
	}
	return answer
}
