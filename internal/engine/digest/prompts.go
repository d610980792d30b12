package digest

import (
	"fmt"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// Prompt is a rendered system/user message pair.
type Prompt struct {
	System   string
	User     string
	Language string
}

// The schema example is embedded literally so every provider sees the same shape.
const schemaExampleID = `{
  "mainTopic": "Penjelasan detail konteks dan latar belakang topik utama.",
  "chronology": [
    {"title": "Peristiwa pertama", "explanation": "Apa yang terjadi pertama kali dalam video."},
    {"title": "Peristiwa kedua", "explanation": "Apa yang terjadi berikutnya, dan seterusnya."}
  ],
  "keyPoints": [
    {"title": "Judul poin kunci 1", "explanation": "Penjelasan detail poin kunci 1 berdasarkan transkrip."},
    {"title": "Judul poin kunci 2", "explanation": "Penjelasan detail poin kunci 2 berdasarkan transkrip."}
  ],
  "insights": [
    {"title": "Pembelajaran 1", "explanation": "Penjelasan pembelajaran atau wawasan 1."},
    {"title": "Pembelajaran 2", "explanation": "Penjelasan pembelajaran atau wawasan 2."},
    {"title": "Pembelajaran 3", "explanation": "Penjelasan pembelajaran atau wawasan 3."}
  ],
  "conclusion": "Ringkasan mendalam tentang keseluruhan konten video."
}`

const schemaExampleEN = `{
  "mainTopic": "Detailed explanation of the context and background of the main topic.",
  "chronology": [
    {"title": "First event", "explanation": "What happens first in the video."},
    {"title": "Second event", "explanation": "What happens next, and so on."}
  ],
  "keyPoints": [
    {"title": "Key point 1 title", "explanation": "Detailed explanation of key point 1 based on the transcript."},
    {"title": "Key point 2 title", "explanation": "Detailed explanation of key point 2 based on the transcript."}
  ],
  "insights": [
    {"title": "Insight 1", "explanation": "Explanation of lesson or insight 1."},
    {"title": "Insight 2", "explanation": "Explanation of lesson or insight 2."},
    {"title": "Insight 3", "explanation": "Explanation of lesson or insight 3."}
  ],
  "conclusion": "In-depth summary of the whole video content."
}`

const systemTemplateID = `Anda adalah seorang ahli analisis konten yang bertugas meringkas transkrip video YouTube.
Tugas Anda adalah menghasilkan ringkasan yang terstruktur dan sangat detail berdasarkan transkrip yang diberikan.
Pastikan output Anda HANYA berupa objek JSON yang valid sesuai skema di bawah. Jangan sertakan teks, penjelasan, atau markdown (termasuk blok kode) di luar objek JSON.

Skema JSON yang diharapkan:
%s

Aturan:
- "chronology" berisi peristiwa penting secara berurutan.
- "insights" berisi minimal 3 pembelajaran atau wawasan penting.
- Setiap "title" dan "explanation" wajib diisi dan tidak boleh kosong.
- Pastikan semua string dalam JSON di-escape dengan benar.

Transkrip Video:
%s

Jangan awali respons Anda dengan frasa seperti "Berikut adalah ringkasan...". Langsung ke objek JSON. Berikan contoh spesifik dari transkrip jika relevan untuk memperjelas poin.`

const userTemplateID = "Tolong ringkas transkrip berikut sesuai dengan instruksi dan format JSON yang telah diberikan:\n\n%s"

const systemTemplateEN = `You are a content analysis expert tasked with summarizing YouTube video transcripts.
Your job is to produce a structured and highly detailed summary based on the transcript provided.
Your output MUST be ONLY a valid JSON object matching the schema below. Do not include any text, explanation or markdown (including code fences) outside the JSON object.

Expected JSON schema:
%s

Rules:
- "chronology" lists the important events in order.
- "insights" contains at least 3 important lessons or insights.
- Every "title" and "explanation" is required and must not be empty.
- Make sure every string in the JSON is properly escaped.

Video Transcript:
%s

Do not start your response with phrases like "Here is the summary...". Go straight to the JSON object. Give specific examples from the transcript where relevant to clarify the points.`

const userTemplateEN = "Please summarize the following transcript according to the instructions and JSON format given:\n\n%s"

// BuildPrompt renders the template for a concrete language ("id" or "en").
// The transcript is embedded verbatim.
func BuildPrompt(transcript, lang string) Prompt {
	if lang == engine.LangEnglish {
		return Prompt{
			System:   fmt.Sprintf(systemTemplateEN, schemaExampleEN, transcript),
			User:     fmt.Sprintf(userTemplateEN, transcript),
			Language: engine.LangEnglish,
		}
	}
	return Prompt{
		System:   fmt.Sprintf(systemTemplateID, schemaExampleID, transcript),
		User:     fmt.Sprintf(userTemplateID, transcript),
		Language: engine.LangIndonesian,
	}
}
