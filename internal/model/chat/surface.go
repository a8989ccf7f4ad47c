package chat

// Layout carries the sizing hints forwarded untouched to the chat surface.
type Layout struct {
	NavCollapsedSize int   `json:"navCollapsedSize"`
	DefaultLayout    []int `json:"defaultLayout"`
}

// DefaultLayoutParams mirrors the sizes the web frontend ships with.
func DefaultLayoutParams() Layout {
	return Layout{NavCollapsedSize: 10, DefaultLayout: []int{30, 160}}
}

// Surface is the construction input of the chat surface collaborator.
type Surface struct {
	SessionID       string    `json:"sessionId"`
	InitialMessages []Message `json:"initialMessages"`
	Layout          Layout    `json:"layout"`
}

// Dialog is the identity-capture dialog as seen by the UI.
type Dialog struct {
	Open     bool       `json:"open"`
	UserName *string    `json:"userName"`
	Copy     DialogCopy `json:"copy"`
}

// DialogCopy is the static text shown inside the identity dialog.
type DialogCopy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DataNotice  string `json:"dataNotice"`
}

// DefaultDialogCopy returns the French copy used by the web client.
func DefaultDialogCopy() DialogCopy {
	return DialogCopy{
		Title: "Kairn — Votre repère dans le cloud souverain européen.",
		Description: "Entrez votre nom pour commencer. Cet assistant vous aide à comprendre, explorer et utiliser " +
			"les technologies du cloud souverain français — OVHcloud, Scaleway, infra open source et pratiques DevOps.",
		DataNotice: "Nous ne sauvegardons pas vos interactions avec Kairn (vos chats sont stockées dans votre navigateur). " +
			"L'utilisation de Kairn implique l'utilisation du service API de Mistral AI qui est hébergé en EU.",
	}
}

// View is what a mount of the chat root renders: the gated dialog next to the surface.
type View struct {
	Session Session `json:"session"`
	Surface Surface `json:"surface"`
	Dialog  Dialog  `json:"dialog"`
}
