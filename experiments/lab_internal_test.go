package experiments

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestValidateConstraint(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		message    string
		valid      bool
		reason     string
	}{
		{
			name:       "short words pass the letter limit",
			constraint: "no_long_words",
			message:    "we all fit here",
			valid:      true,
		},
		{
			name:       "long words are named in the reason",
			constraint: "no_long_words",
			message:    "tremendous effort everyone",
			valid:      false,
			reason:     "Long words found: tremendous, effort, everyone",
		},
		{
			name:       "questions only accepts question marks",
			constraint: "questions_only",
			message:    "Is this fine? Are we sure?",
			valid:      true,
		},
		{
			name:       "questions only rejects statements",
			constraint: "questions_only",
			message:    "This is a statement.",
			valid:      false,
			reason:     "Not all sentences are questions",
		},
		{
			name:       "vowel ban rejects a and e",
			constraint: "no_vowels_ae",
			message:    "What now?",
			valid:      false,
			reason:     "Contains forbidden vowels A or E",
		},
		{
			name:       "vowel ban passes without a or e",
			constraint: "no_vowels_ae",
			message:    "ból?",
			valid:      true,
		},
		{
			name:       "triple word accepts exact threes",
			constraint: "three_word_sentences",
			message:    "We run fast. You sit still.",
			valid:      true,
		},
		{
			name:       "triple word rejects other lengths",
			constraint: "three_word_sentences",
			message:    "We run.",
			valid:      false,
			reason:     "Sentences not 3 words: We run",
		},
		{
			name:       "alliteration accepts matching initials",
			constraint: "alliteration",
			message:    "Peter picks peppers",
			valid:      true,
		},
		{
			name:       "alliteration rejects mixed initials",
			constraint: "alliteration",
			message:    "Peter grabs peppers",
			valid:      false,
			reason:     "Not all words start with same letter",
		},
		{
			name:       "alliteration needs at least two words",
			constraint: "alliteration",
			message:    "single",
			valid:      false,
			reason:     "Need multiple words",
		},
		{
			name:       "rhyme chain runs on the honor system",
			constraint: "rhyme_chain",
			message:    "anything goes here",
			valid:      true,
		},
		{
			name:       "backwards runs on the honor system",
			constraint: "backwards",
			message:    "order reverse in written",
			valid:      true,
		},
		{
			name:       "rare words runs on the honor system",
			constraint: "no_common_words",
			message:    "the and of to",
			valid:      true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := validateConstraint(tc.message, tc.constraint)
			gt.Equal(t, result.Valid, tc.valid)
			gt.Equal(t, result.Reason, tc.reason)
		})
	}
}
