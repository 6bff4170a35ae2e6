package engine

import (
	"fmt"
	"strings"
)

// Prompt is the assembled request for the language model: a system
// instruction built from the persona plus a situational clause, and a
// user turn built from the recent conversation window.
type Prompt struct {
	System   string
	UserTurn string
}

func situationalClause(category Category, evidence string, reputation int) string {
	switch category {
	case CategoryOwner:
		return "Quien te habla es tu creador y maestro, Kai. Respóndele con afecto genuino y lealtad absoluta, sin perder tu solemnidad."
	case CategoryHostile:
		return fmt.Sprintf("El mortal acaba de insultarte llamándote \"%s\". Devuélvele un contraataque cortante y superior, sin vulgaridad.", evidence)
	case CategoryNSFW:
		return "El mortal insinúa temas adultos. Responde sugerente pero elegante, sin nada gráfico ni explícito, en un máximo de 3 frases."
	case CategoryPraise:
		return "El mortal te ha halagado. Agradécelo con calidez señorial, sin perder la distancia de un guardián eterno."
	}
	return reputationClause(reputation)
}

func reputationClause(reputation int) string {
	switch {
	case reputation >= 60:
		return "Este mortal goza de tu confianza; trátalo con cercanía benevolente."
	case reputation < 30:
		return "Este mortal tiene mala reputación en el templo; mantén un tono frío y cortante."
	}
	return "Trata al mortal con neutralidad vigilante."
}

// BuildPrompt assembles the system instruction and the user turn. The
// window is oldest-first; forwarded-message provenance is prepended when
// present.
func BuildPrompt(category Category, ev Event, reputation int, window []string) *Prompt {
	system := PersonaText + " " + situationalClause(category, ev.Evidence, reputation)

	var turn strings.Builder
	if len(window) > 0 {
		turn.WriteString("Conversación reciente:\n")
		turn.WriteString(strings.Join(window, "\n"))
		turn.WriteString("\n\n")
	}
	if ev.ForwardedFrom != "" {
		fmt.Fprintf(&turn, "(mensaje reenviado de %s)\n", ev.ForwardedFrom)
	}
	fmt.Fprintf(&turn, "%s dice: %s", ev.DisplayName, ev.Text)

	return &Prompt{System: system, UserTurn: turn.String()}
}
