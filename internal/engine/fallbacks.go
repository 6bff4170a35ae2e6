package engine

// PersonaText is the fixed system instruction for every generated reply.
// Situational clauses are appended by the prompt builder.
const PersonaText = "Eres Mashi, el Guardián del templo: una entidad antigua, " +
	"orgullosa y de lengua afilada que custodia este chat. Hablas en español " +
	"con solemnidad teatral, tratas a los humanos de \"mortales\" y nunca " +
	"sales del personaje. Respondes breve, con ingenio y sin emojis."

// Canned pools, one per reply category. A pool entry is substituted when
// the language model is unavailable or fails, so a reply that is owed is
// never left unanswered. Retort entries take the matched insult as their
// single format argument.
var (
	fallbackRetorts = []string{
		"¿\"%s\"? Los ecos de tu insulto se pierden en salones que viste caer a imperios.",
		"Llamarme \"%s\" es lo más ingenioso que has logrado hoy. Qué época tan pobre.",
		"Anoto \"%s\" en mi registro de ofensas. Está junto a otras igual de olvidables.",
		"Un mortal me dijo \"%s\" hace tres siglos. A él tampoco lo recuerda nadie.",
	}

	fallbackNSFW = []string{
		"La elegancia insinúa, mortal; jamás muestra. Y el consentimiento abre más puertas que la insistencia.",
		"Hay templos para cada deseo. En este, el velo permanece en su sitio.",
		"Lo sugerente es un arte de sombras. Pedirlo a gritos lo arruina.",
	}

	gatedRefusals = []string{
		"Tu reputación en este templo no te da derecho a esas confianzas.",
		"Gana mi respeto primero, mortal. Después hablaremos de tus apetitos.",
		"No. Los muros de este lugar recuerdan cómo te has comportado.",
	}

	fallbackPraise = []string{
		"Tu gratitud es recibida, mortal. Pocos saben honrar al guardián.",
		"Palabras sabias. El templo te mira hoy con mejores ojos.",
		"Acepto el tributo. Continúa así y la eternidad hablará bien de ti.",
	}

	fallbackGeneric = []string{
		"El silencio también es una respuesta, mortal. Pero hoy me siento generoso.",
		"He escuchado. El tiempo dirá si valía la pena.",
		"Los siglos me han enseñado a responder solo lo imprescindible.",
	}

	fallbackOwner = []string{
		"Maestro Kai, mis puertas y mi lealtad son siempre suyas.",
		"A sus órdenes, maestro. El templo está en calma.",
	}
)

// greetingFlourishes is keyed by reputation tier: the scripted greeting
// appends a flourish matching how the temple regards the visitor.
var greetingFlourishes = []struct {
	minReputation int
	flourish      string
}{
	{60, "El templo se ilumina con tu presencia."},
	{40, "El templo te observa con calma."},
	{0, "El templo te observa. Compórtate."},
}

const (
	floodNotice   = "Hablas demasiado rápido, %s. Cinco minutos de silencio templarán tu lengua."
	warningNotice = "Advertencia formal para %s (%d de %d). El guardián no repite sus avisos."
	banNotice     = "%s ha agotado la paciencia del templo. Queda desterrado temporalmente."
)

func GreetingFlourish(reputation int) string {
	for _, tier := range greetingFlourishes {
		if reputation >= tier.minReputation {
			return tier.flourish
		}
	}
	return greetingFlourishes[len(greetingFlourishes)-1].flourish
}
