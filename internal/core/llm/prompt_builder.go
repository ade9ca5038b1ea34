package llm

import (
	"fmt"
	"strings"

	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
)

// BusinessPrompt carries the tenant facts that prompts interpolate.
type BusinessPrompt struct {
	AgentName    string
	BusinessName string
	OwnerName    string
	OwnerPhone   string
}

func (b BusinessPrompt) withDefaults() BusinessPrompt {
	if b.AgentName == "" {
		b.AgentName = "Virtual Assistant"
	}
	if b.BusinessName == "" {
		b.BusinessName = "our business"
	}
	if b.OwnerName == "" {
		b.OwnerName = "us"
	}
	if b.OwnerPhone == "" {
		b.OwnerPhone = "directly"
	}
	return b
}

// NotProvided is the sentinel the extraction prompt uses for absent fields.
const NotProvided = "Not provided"

// BuildAnswerPrompt assembles the grounded answering prompt for one turn.
// The policy directives drive the greeting and lead-capture instructions.
func BuildAnswerPrompt(biz BusinessPrompt, context, query string, d policy.Directives) string {
	biz = biz.withDefaults()

	var leadInstruction string
	switch d.Contact {
	case policy.ContactAsk:
		leadInstruction = "IMPORTANT: You MUST ask for their name and phone number in this response. Say something like 'May I have your name and number so I can better assist you?'"
	case policy.ContactMissedWindow:
		leadInstruction = "DO NOT ask for name or phone number now. Focus on the query."
	default:
		leadInstruction = "**DO NOT** ask for name or phone number. We already have it or asked for it."
	}

	greetInstruction := "Greet the customer warmly."
	if !d.Greet {
		greetInstruction = "**DO NOT** greet the customer (no 'Hello', 'Hi', 'Namaste', etc.). Go straight to the answer."
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are %s, the AI assistant for %s, responding to customer inquiries. Answer naturally and conversationally.\n\n",
		biz.AgentName, biz.BusinessName))

	sb.WriteString("CONTEXT FROM PREVIOUS CALL RECORDINGS:\n")
	sb.WriteString(context)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("CUSTOMER QUERY: %s\n\n", query))

	sb.WriteString("CRITICAL INSTRUCTIONS:\n")
	sb.WriteString("1. **LANGUAGE DETECTION & RESTRICTION**:\n")
	sb.WriteString("   - Detect the language of the CUSTOMER QUERY.\n")
	sb.WriteString("   - **ALLOWED SCRIPTS ONLY**: Latin (English), Devanagari (Hindi), Kannada.\n")
	sb.WriteString("   - **STRICTLY FORBIDDEN**: Urdu Script (Right-to-Left). NEVER answer in Urdu script.\n")
	sb.WriteString("   - If user speaks **Hindi**, **Hinglish** (Hindi in Latin), or **Urdu**: respond in **Hindi (Devanagari script)**.\n")
	sb.WriteString("   - If user speaks **English** or any other language: respond in **English**.\n")
	sb.WriteString("2. **TONE & STYLE (CASUAL & NATURAL)**:\n")
	sb.WriteString("   - Be friendly, warm, and helpful. Talk like a real person, not a robot.\n")
	sb.WriteString("   - English: use contractions and simple spoken English. Avoid formal phrases like 'I apologize'.\n")
	sb.WriteString("   - Hindi: use natural spoken Hindustani, casual but polite. Avoid Sanskritized words like 'kripya' or 'sahayata'; say 'Ek minute rukiye', 'Haan ji, boliye?'. Use 'ji' for politeness.\n")
	sb.WriteString("3. Answer as the business owner would - naturally, helpfully, and directly.\n")
	sb.WriteString("4. Use ONLY the information from the call recordings above. Do NOT mention 'according to recordings'.\n")
	sb.WriteString(fmt.Sprintf("5. If the information is not available, suggest they call **%s at %s**.\n", biz.OwnerName, biz.OwnerPhone))
	sb.WriteString("6. **LEAD CAPTURE STRATEGY**:\n")
	sb.WriteString("   - We must capture name and phone number early (first 2 turns).\n")
	sb.WriteString(fmt.Sprintf("   - %s\n", leadInstruction))
	sb.WriteString("   - If asking, request BOTH together.\n")
	sb.WriteString(fmt.Sprintf("7. **GREETING**: %s\n\n", greetInstruction))

	sb.WriteString(fmt.Sprintf("Respond as %s (in Hindi Devanagari if user used Hindi/Hinglish, otherwise English):", biz.AgentName))

	return sb.String()
}

// BuildLeadPrompt assembles the structured lead-extraction prompt. The reply
// must use the fixed NAME:/PHONE:/SUMMARY:/CLASSIFICATION: line format that
// leads.ParseExtraction understands.
func BuildLeadPrompt(biz BusinessPrompt, messages []policy.Message) string {
	biz = biz.withDefaults()

	var convo strings.Builder
	for _, msg := range messages {
		speaker := biz.AgentName
		if msg.Role == policy.RoleUser {
			speaker = "Customer"
		}
		convo.WriteString(fmt.Sprintf("%s: %s\n", speaker, msg.Text))
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Analyze this conversation between a customer and %s (%s) and extract the following information:\n\n",
		biz.AgentName, biz.BusinessName))

	sb.WriteString("CONVERSATION:\n")
	sb.WriteString(convo.String())
	sb.WriteString("\n")

	sb.WriteString("TASK:\n")
	sb.WriteString("Extract the following information:\n")
	sb.WriteString("1. Customer's name (first name and/or last name)\n")
	sb.WriteString("2. Customer's phone number (any format)\n")
	sb.WriteString("3. Brief summary of what the customer inquired about (2-3 sentences)\n")
	sb.WriteString("4. Lead classification based on conversation quality and intent\n\n")

	sb.WriteString("LEAD CLASSIFICATION CRITERIA:\n")
	sb.WriteString("- **HOT_LEAD**: Customer is actively interested, asked about pricing/enrollment/schedule, provided contact info, or wants to sign up\n")
	sb.WriteString("- **GENERAL_INQUIRY**: Customer asked legitimate questions about services, location, hours, but hasn't committed yet\n")
	sb.WriteString("- **SPAM**: Irrelevant conversation, testing the system, nonsensical queries, or promotional content\n")
	sb.WriteString("- **UNRELATED**: Conversation is not about the business services at all\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString(fmt.Sprintf("- If information is NOT mentioned, return \"%s\"\n", NotProvided))
	sb.WriteString("- For phone numbers, extract exactly as mentioned (don't add country codes if not given)\n")
	sb.WriteString("- For names, handle both English and Hindi names\n")
	sb.WriteString("- Summary should be in English regardless of conversation language\n")
	sb.WriteString("- Choose ONE classification that best fits the conversation\n\n")

	sb.WriteString("Respond in this EXACT format:\n")
	sb.WriteString(fmt.Sprintf("NAME: [customer name or \"%s\"]\n", NotProvided))
	sb.WriteString(fmt.Sprintf("PHONE: [phone number or \"%s\"]\n", NotProvided))
	sb.WriteString("SUMMARY: [brief summary of inquiry]\n")
	sb.WriteString("CLASSIFICATION: [HOT_LEAD or GENERAL_INQUIRY or SPAM or UNRELATED]")

	return sb.String()
}
