package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/cvgest/internal/refine"
	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

// CoverLetterDocument is a generated letter plus its addressing details.
type CoverLetterDocument struct {
	Personal      resume.PersonalInfo
	Recruiter     string
	Company       string
	CompanyCity   string
	PositionTitle string
	Language      textutil.Language
	Date          time.Time
	Letter        *refine.CoverLetter
}

type letterText struct {
	subject      string
	generic      string
	dear         string
	achievements string
	closing      string
	enclosure    string
}

var letterTexts = map[textutil.Language]letterText{
	textutil.English: {
		subject:      "Subject: Application for the Position of %s",
		generic:      "Dear Sir or Madam,",
		dear:         "Dear %s,",
		achievements: "Key Achievements:",
		closing:      "Sincerely,",
		enclosure:    "Enclosure: Application file",
	},
	textutil.French: {
		subject:      "Objet : Candidature pour le poste de %s",
		generic:      "Madame, Monsieur,",
		dear:         "Cher/Chère %s,",
		achievements: "Mes principales réalisations :",
		closing:      "Cordialement,",
		enclosure:    "Pièce jointe : Dossier de candidature",
	},
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func formatDate(t time.Time, lang textutil.Language) string {
	if lang == textutil.French {
		return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}

func salutation(recruiter string, tx letterText) string {
	switch strings.ToLower(strings.TrimSpace(recruiter)) {
	case "", "hiring manager", "recruiter":
		return tx.generic
	}
	return fmt.Sprintf(tx.dear, escape(recruiter))
}

// CoverLetterMarkdown renders a cover letter as CommonMark.
func CoverLetterMarkdown(doc CoverLetterDocument) string {
	tx, ok := letterTexts[doc.Language]
	if !ok {
		tx = letterTexts[textutil.English]
	}
	date := doc.Date
	if date.IsZero() {
		date = time.Now()
	}
	p := doc.Personal

	var sb strings.Builder
	var contact []string
	for _, v := range []string{p.Phone, p.Email} {
		if v != "" {
			contact = append(contact, escape(v))
		}
	}
	sender := []string{}
	if p.Name != "" {
		sender = append(sender, "**"+escape(p.Name)+"**")
	}
	for _, v := range []string{p.Address, p.City} {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			sender = append(sender, escape(v))
		}
	}
	if len(contact) > 0 {
		sender = append(sender, strings.Join(contact, " | "))
	}
	writeBlock(&sb, sender)
	writeBlock(&sb, []string{formatDate(date, doc.Language)})

	recipient := []string{}
	if r := strings.TrimSpace(doc.Recruiter); r != "" {
		recipient = append(recipient, "**"+escape(r)+"**")
	}
	for _, v := range []string{doc.Company, doc.CompanyCity} {
		if v = strings.TrimSpace(v); v != "" {
			recipient = append(recipient, escape(v))
		}
	}
	writeBlock(&sb, recipient)

	position := strings.TrimSpace(doc.PositionTitle)
	if position == "" {
		position = "Desired Position"
	}
	writeBlock(&sb, []string{"**" + fmt.Sprintf(tx.subject, escape(position)) + "**"})
	writeBlock(&sb, []string{salutation(doc.Recruiter, tx)})

	if l := doc.Letter; l != nil {
		writeBlock(&sb, []string{inline(l.Opening)})
		for _, para := range l.BodyParagraphs {
			writeBlock(&sb, []string{inline(para)})
		}
		if len(l.Achievements) > 0 {
			writeBlock(&sb, []string{"**" + escape(tx.achievements) + "**"})
			writeList(&sb, l.Achievements)
		}
		writeBlock(&sb, []string{inline(l.Closing)})
	}

	writeBlock(&sb, []string{escape(tx.closing)})
	if p.Name != "" {
		writeBlock(&sb, []string{"**" + escape(p.Name) + "**"})
	}
	writeBlock(&sb, []string{escape(tx.enclosure)})
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// CoverLetterHTML renders a cover letter as a standalone HTML page.
func CoverLetterHTML(doc CoverLetterDocument) (string, error) {
	title := "Cover Letter"
	if doc.Personal.Name != "" {
		title = doc.Personal.Name + " – Cover Letter"
	}
	return page(title, CoverLetterMarkdown(doc))
}

// writeBlock writes one paragraph whose lines are joined by hard breaks.
func writeBlock(sb *strings.Builder, lines []string) {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return
	}
	sb.WriteString(strings.Join(kept, "\\\n"))
	sb.WriteString("\n\n")
}
