package chatbot

import "strings"

// Replies are the canned assistant texts of the handoff flow. The proposal
// must contain OfferMarker: the marker is how a later turn recognizes that
// the conversation is waiting on a handoff confirmation, so it never appears
// in any other reply.
type Replies struct {
	// HumanProposal offers to hand the visitor to a human agent.
	HumanProposal string
	// HumanConfirmed acknowledges a confirmed handoff.
	HumanConfirmed string
	// OfferMarker is the fixed phrase identifying a pending handoff offer.
	OfferMarker string
}

// EnglishReplies returns the built-in English reply set.
func EnglishReplies() Replies {
	return Replies{
		HumanProposal:  "I can put you in touch with a human agent from our team. Would you like that?",
		HumanConfirmed: "Understood. A human agent has been notified and will get back to you shortly.",
		OfferMarker:    "put you in touch with a human agent",
	}
}

// FrenchReplies returns the built-in French reply set.
func FrenchReplies() Replies {
	return Replies{
		HumanProposal:  "Je peux vous mettre en relation avec un conseiller humain de notre équipe. Le souhaitez-vous ?",
		HumanConfirmed: "C'est noté. Un conseiller humain a été prévenu et reviendra vers vous rapidement.",
		OfferMarker:    "mettre en relation avec un conseiller humain",
	}
}

// RepliesForLocale returns the built-in reply set for a locale, defaulting to English.
func RepliesForLocale(locale string) Replies {
	if strings.HasPrefix(strings.ToLower(locale), "fr") {
		return FrenchReplies()
	}
	return EnglishReplies()
}
