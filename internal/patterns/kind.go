package patterns

import (
	"regexp"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
)

var (
	// DARF and GPS are unambiguous in any case. DAS is also a common
	// preposition, so only the upper-case token counts.
	taxFolded = regexp.MustCompile(`\b(?:darf|gps|documento de arrecadacao|simples nacional|guia da previdencia)\b`)
	taxUpper  = regexp.MustCompile(`\bDAS\b`)

	slipFolded = regexp.MustCompile(`\b(?:codigo de barras|linha digitavel|boleto)\b`)
	digitRun   = regexp.MustCompile(`(?:^|\D)(?:\d{44}|\d{47}|\d{48})(?:\D|$)`)

	pixStrong = regexp.MustCompile(`\bchave pix\b`)
	pixWeak   = regexp.MustCompile(`\bpix\b`)

	transferFolded = regexp.MustCompile(`\b(?:ted|doc|transferencia|transf)\b`)
)

// DetectKind classifies text. Precedence: tax guide, then PIX when a random
// key or an explicit "chave pix" marker appears without any digit line, then
// bank slip, then any PIX mention or end-to-end id, then bank transfer, then
// the hint, and finally generic receipt. The tax guide markers override the
// hint.
func DetectKind(text string, hint *domain.DocumentKind) domain.DocumentKind {
	folded := normalize.Fold(text)

	if taxFolded.MatchString(folded) || taxUpper.MatchString(text) {
		return domain.KindTaxGuide
	}

	line, _ := findLine(text)
	hasDigitLine := line != "" || digitRun.MatchString(text)

	if !hasDigitLine && (uuidPattern.MatchString(text) || pixStrong.MatchString(folded)) {
		return domain.KindPixReceipt
	}
	if hasDigitLine || slipFolded.MatchString(folded) {
		return domain.KindBankSlip
	}
	if pixWeak.MatchString(folded) || e2eShape.MatchString(text) {
		return domain.KindPixReceipt
	}
	if transferFolded.MatchString(folded) {
		return domain.KindBankTransfer
	}
	if hint != nil {
		return *hint
	}
	return domain.KindGenericReceipt
}
