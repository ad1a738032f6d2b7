package textutil

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultKeywordCount is used when Keywords is called with topN <= 0.
const DefaultKeywordCount = 15

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Keywords returns the topN most frequent words of text, lower-cased, with
// stopwords of lang and words of two characters or fewer removed. Words of
// equal frequency keep the order of their first occurrence.
func Keywords(text string, topN int, lang Language) []string {
	if topN <= 0 {
		topN = DefaultKeywordCount
	}
	stop := stopwords(lang)

	freq := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) <= 2 || stop[w] {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

func stopwords(lang Language) map[string]bool {
	if lang == French {
		return frenchStopwords
	}
	return englishStopwords
}

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

var englishStopwords = wordSet(`
i me my myself we our ours ourselves you you're you've you'll you'd your
yours yourself yourselves he him his himself she she's her hers herself it
it's its itself they them their theirs themselves what which who whom this
that that'll these those am is are was were be been being have has had
having do does did doing a an the and but if or because as until while of
at by for with about against between into through during before after
above below to from up down in out on off over under again further then
once here there when where why how all any both each few more most other
some such no nor not only own same so than too very s t can will just don
don't should should've now d ll m o re ve y ain aren aren't couldn
couldn't didn didn't doesn doesn't hadn hadn't hasn hasn't haven haven't
isn isn't ma mightn mightn't mustn mustn't needn needn't shan shan't
shouldn shouldn't wasn wasn't weren weren't won won't wouldn wouldn't
`)

var frenchStopwords = wordSet(`
au aux avec ce ces dans de des du elle en et eux il ils je la le les leur
lui ma mais me même mes moi mon ne nos notre nous on ou par pas pour qu que
qui sa se ses son sur ta te tes toi ton tu un une vos votre vous c d j l à
m n s t y été étée étées étés étant étante étants étantes suis es est
sommes êtes sont serai seras sera serons serez seront serais serait
serions seriez seraient étais était étions étiez étaient fus fut fûmes
fûtes furent sois soit soyons soyez soient fusse fusses fût fussions
fussiez fussent ayant ayante ayantes ayants eu eue eues eus ai as avons
avez ont aurai auras aura aurons aurez auront aurais aurait aurions
auriez auraient avais avait avions aviez avaient eut eûmes eûtes eurent
aie aies ait ayons ayez aient eusse eusses eût eussions eussiez eussent
`)
