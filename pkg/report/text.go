package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/otherjamesbrown/conversa/pkg/analysis"
	"github.com/otherjamesbrown/conversa/pkg/media"
)

// TopStreaks is how many authors the streak leaderboard lists.
const TopStreaks = 5

// CompletionMarker is the last line of a text report.
const CompletionMarker = "Análises concluídas e salvas no arquivo."

const noData = "Nenhum dado disponível."

// WriteText renders r as the plain-text report. Sections appear in a
// fixed order separated by blank lines; a section with nothing to show
// states so.
func WriteText(w io.Writer, r *Report) error {
	var t textWriter
	t.stickers(r.Stickers)
	t.audio(r.Audio)
	t.line("Usuário que mais faz perguntas: %s com %d perguntas", r.Questioner.Author, r.Questioner.Count)
	t.end()
	t.streaks(r.Streaks)
	t.authorCounts("Pontuação dos usuários mais engraçados:", "%s: %d risadas", r.Laughs)
	t.emoji(r.Emoji)
	t.authorMeans("Média de tempo de resposta entre usuários (em segundos):", "%s: %.2f segundos", r.Latency)
	t.authorWords(r.AuthorWords)
	t.groupWord(r.GroupWord)
	t.line("Período mais ativo do grupo: %s", r.Bands.Busiest)
	t.end()
	t.bands(r.Bands)
	t.monthly(r.Monthly)
	if x := r.Extended; x != nil {
		t.extended(x)
	}
	t.line("%s", CompletionMarker)

	if _, err := w.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

type textWriter struct {
	buf bytes.Buffer
}

func (t *textWriter) line(format string, args ...interface{}) {
	fmt.Fprintf(&t.buf, format, args...)
	t.buf.WriteByte('\n')
}

// end closes a section.
func (t *textWriter) end() {
	t.buf.WriteByte('\n')
}

func (t *textWriter) notices(notices []media.Notice) {
	for _, n := range notices {
		switch n.Kind {
		case media.NoticeMissingDir:
			t.line("A pasta '%s' não existe.", n.Path)
		default:
			t.line("Erro ao processar %s: %s", n.Path, n.Error)
		}
	}
}

func (t *textWriter) stickers(s media.StickerResult) {
	t.notices(s.Notices)
	switch {
	case s.Skipped:
		t.line("Nenhuma pasta de figurinhas informada.")
	case s.Found:
		t.line("Figurinha mais usada: %s, Ocorrências: %d", s.Path, s.Count)
	default:
		t.line("Nenhuma figurinha encontrada.")
	}
	t.end()
}

func (t *textWriter) audio(a media.AudioResult) {
	t.notices(a.Notices)
	t.line("Maiores arquivos de áudio:")
	switch {
	case a.Skipped:
		t.line("Nenhuma pasta de áudios informada.")
	case len(a.Files) == 0:
		t.line("Nenhum arquivo de áudio encontrado.")
	}
	for i, f := range a.Files {
		t.line("%d. %s - Tamanho: %.2f KB", i+1, f.Name, float64(f.Size)/1024)
	}
	t.end()
}

func (t *textWriter) streaks(entries []analysis.StreakEntry) {
	t.line("Top %d usuários com mais mensagens seguidas:", TopStreaks)
	if len(entries) == 0 {
		t.line(noData)
	}
	for i, e := range entries {
		t.line("%d. %s - Máx: %d mensagens seguidas, Média: %.2f", i+1, e.Author, e.Max, e.Mean)
	}
	t.end()
}

func (t *textWriter) emoji(entries []analysis.EmojiCount) {
	t.line("Top %d emojis mais usados:", analysis.TopEmojiCount)
	if len(entries) == 0 {
		t.line("Nenhum emoji encontrado.")
	}
	for _, e := range entries {
		t.line("%s: %d vezes", e.Emoji, e.Count)
	}
	t.end()
}

func (t *textWriter) authorWords(entries []analysis.AuthorWord) {
	t.line("Palavra mais usada por cada pessoa (ignorando arquivos e mídias):")
	if len(entries) == 0 {
		t.line(noData)
	}
	for _, e := range entries {
		word := e.Word
		if !e.Found {
			word = "Nenhuma palavra"
		}
		t.line("%s: %s", e.Author, word)
	}
	t.end()
}

func (t *textWriter) groupWord(g analysis.GroupWord) {
	if g.Found {
		t.line("Palavra mais falada no grupo: %s (usada %d vezes)", g.Word, g.Count)
	} else {
		t.line("Nenhuma palavra válida encontrada no grupo.")
	}
	t.end()
}

func (t *textWriter) bands(b analysis.BandResult) {
	t.line("Soma de mensagens por período do dia:")
	for _, c := range b.Counts {
		t.line("%s: %d mensagens", c.Band, c.Count)
	}
	t.end()
}

func (t *textWriter) monthly(months []analysis.MonthCount) {
	t.line("Quantidade de mensagens por mês:")
	if len(months) == 0 {
		t.line(noData)
	}
	for _, m := range months {
		t.line("%s: %d mensagens", m.Month, m.Count)
	}
	t.end()
}

func (t *textWriter) authorCounts(title, format string, entries []analysis.AuthorCount) {
	t.line("%s", title)
	if len(entries) == 0 {
		t.line(noData)
	}
	for _, e := range entries {
		t.line(format, e.Author, e.Count)
	}
	t.end()
}

func (t *textWriter) authorMeans(title, format string, entries []analysis.AuthorMean) {
	t.line("%s", title)
	if len(entries) == 0 {
		t.line(noData)
	}
	for _, e := range entries {
		t.line(format, e.Author, e.Mean)
	}
	t.end()
}

func (t *textWriter) extended(x *Extended) {
	t.authorMeans("Média de mensagens diárias por contato:", "%s: %.2f mensagens por dia", x.DailyAverage)
	t.authorCounts(
		fmt.Sprintf("Número de palavras enviadas por cada participante (ignorando mensagens com mais de %d caracteres):", analysis.MaxWordCountBody),
		"%s: %d palavras", x.WordCounts)
	t.authorMeans("Tempo de resposta médio de cada usuário (em segundos):", "%s: %.2f segundos", x.AllPriorLatency)
	t.socialGraph(x.SocialGraph)
	t.authorCounts("Uso de gírias e abreviações por participante:", "%s: %d gírias/abreviações", x.Slang)
	t.authorMeans("Nível de formalidade por participante (baseado no uso de palavras iniciadas com maiúsculas):",
		"%s: %.2f%% palavras formais", x.Formality)
	t.style(x.Style)
	t.spelling(x.Spelling)
	t.sentiment(x.Sentiment)
	t.authorCounts("Uso de palavras carinhosas ou de incentivo por usuário:", "%s: %d palavras carinhosas", x.Endearment)
	t.authorCounts("Expressões de frustração ou desabafo por usuário:", "%s: %d expressões de frustração", x.Frustration)
	t.quotes(x.Quotes)
	t.longest(x.Longest)
	t.dailyRecord(x.DailyRecord)
}

func (t *textWriter) socialGraph(edges []analysis.Interaction) {
	t.line("Conexões entre membros (quem interage mais com quem):")
	if len(edges) == 0 {
		t.line(noData)
	}
	for _, e := range edges {
		t.line("%s -> %s: %d interações", e.From, e.To, e.Count)
	}
	t.end()
}

func (t *textWriter) style(entries []analysis.StyleEntry) {
	t.line("Análise do estilo de escrita de cada usuário (uso de maiúsculas e pontuação):")
	if len(entries) == 0 {
		t.line(noData)
	}
	for _, e := range entries {
		t.line("%s: %.2f%% maiúsculas, %.2f%% pontuação", e.Author, e.Uppercase, e.Punctuation)
	}
	t.end()
}

func (t *textWriter) spelling(res *analysis.SpellingResult) {
	t.line("Quantidade de erros ortográficos por pessoa:")
	switch {
	case res == nil:
		t.line("Nenhum classificador configurado.")
	case len(res.Authors) == 0:
		t.line(noData)
	default:
		for _, e := range res.Authors {
			t.line("%s: %d erros", e.Author, e.Count)
		}
	}
	t.end()
}

func (t *textWriter) sentiment(res *analysis.SentimentResult) {
	t.line("Análise de sentimento por usuário:")
	if res == nil {
		t.line("Nenhum classificador configurado.")
		t.end()
		return
	}
	for _, g := range res.Groups {
		t.end()
		t.line("Sentimento %s:", g.Label)
		for _, e := range g.Authors {
			t.line("%s: %d mensagens", e.Author, e.Count)
		}
	}
	t.end()
}

func (t *textWriter) quotes(quotes []analysis.QuoteCount) {
	t.line("Mensagens mais respondidas ou citadas:")
	if len(quotes) == 0 {
		t.line("Nenhuma citação encontrada.")
	}
	for _, q := range quotes {
		t.line("\"%s\": %d citações", q.Text, q.Count)
	}
	t.end()
}

func (t *textWriter) longest(l *analysis.Longest) {
	if l == nil {
		t.line("Nenhuma mensagem registrada.")
		t.end()
		return
	}
	t.line("Mensagem mais longa enviada por %s (%d caracteres):", l.Author, l.Length)
	t.line("%s", l.Body)
	t.end()
}

func (t *textWriter) dailyRecord(d *analysis.DayRecord) {
	if d == nil {
		t.line("Nenhum recorde diário registrado.")
		t.end()
		return
	}
	t.line("Recorde de mensagens em um dia (%s): %d mensagens", d.Date, d.Total)
	t.line("Participação dos usuários nesse dia:")
	for _, e := range d.Authors {
		t.line("%s: %d mensagens", e.Author, e.Count)
	}
	t.end()
}
