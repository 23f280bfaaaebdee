package domain

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Identity is step 1 of the submission: who the artist is and how to reach them.
type Identity struct {
	ArtistName   string `json:"artistName" form:"artistName" validate:"required"`
	Aliases      string `json:"aliases" form:"aliases"`
	ContactName  string `json:"contactName" form:"contactName"`
	ContactEmail string `json:"contactEmail" form:"contactEmail" validate:"required,email"`
	ContactPhone string `json:"contactPhone" form:"contactPhone"`
	Location     string `json:"location" form:"location"`
	Genres       string `json:"genres" form:"genres"`
	Pronouns     string `json:"pronouns" form:"pronouns"`
}

// Music is step 2: what is being submitted and how it was made.
type Music struct {
	SubmissionType      string `json:"submissionType" form:"submissionType"`
	TrackTitles         string `json:"trackTitles" form:"trackTitles"`
	ProductionDetails   string `json:"productionDetails" form:"productionDetails"`
	AIEngines           string `json:"aiEngines" form:"aiEngines"`
	HumanVsAIPercentage string `json:"humanVsAiPercentage" form:"humanVsAiPercentage"`
	Workflow            string `json:"workflow" form:"workflow"`
	MasteringStatus     string `json:"masteringStatus" form:"masteringStatus"`
	TrackLinks          string `json:"trackLinks" form:"trackLinks"`
}

// Profile is step 3: biography, socials and artwork.
type Profile struct {
	ShortBio         string `json:"shortBio" form:"shortBio"`
	LongBio          string `json:"longBio" form:"longBio"`
	SocialSpotify    string `json:"socialSpotify" form:"socialSpotify"`
	SocialSoundcloud string `json:"socialSoundcloud" form:"socialSoundcloud"`
	SocialYoutube    string `json:"socialYoutube" form:"socialYoutube"`
	SocialBandcamp   string `json:"socialBandcamp" form:"socialBandcamp"`
	SocialInstagram  string `json:"socialInstagram" form:"socialInstagram"`
	SocialTwitter    string `json:"socialTwitter" form:"socialTwitter"`
	SocialFacebook   string `json:"socialFacebook" form:"socialFacebook"`
	MonthlyListeners string `json:"monthlyListeners" form:"monthlyListeners"`
	ArtworkLinks     string `json:"artworkLinks" form:"artworkLinks"`
	LogoLink         string `json:"logoLink" form:"logoLink" validate:"omitempty,url"`
}

// Rights is step 4: ownership, licensing and the label agreement.
type Rights struct {
	OwnershipDeclaration bool   `json:"ownershipDeclaration" form:"ownershipDeclaration"`
	PublishingInfo       string `json:"publishingInfo" form:"publishingInfo"`
	LicensePreference    string `json:"licensePreference" form:"licensePreference"`
	DRMAllowed           bool   `json:"drmAllowed" form:"drmAllowed"`
	AgreementCheckbox    bool   `json:"agreementCheckbox" form:"agreementCheckbox" validate:"required"`
}

// Extras is step 5: optional context for the A&R team.
type Extras struct {
	ArtistWebsite    string `json:"artistWebsite" form:"artistWebsite" validate:"omitempty,url"`
	PressQuote       string `json:"pressQuote" form:"pressQuote"`
	Influences       string `json:"influences" form:"influences"`
	SocialInitiative string `json:"socialInitiative" form:"socialInitiative"`
	FeedbackRequest  bool   `json:"feedbackRequest" form:"feedbackRequest"`
}

// Submission is the full artist submission record. Each section belongs to
// one step of the intake form; the sections are only flattened into a
// single record when the submission is sent.
type Submission struct {
	Identity Identity `json:"identity"`
	Music    Music    `json:"music"`
	Profile  Profile  `json:"profile"`
	Rights   Rights   `json:"rights"`
	Extras   Extras   `json:"extras"`
}

// SubmissionSteps is the number of steps in the intake form.
const SubmissionSteps = 5

// Section returns a pointer to the section edited on step (1-based),
// or nil for an unknown step.
func (s *Submission) Section(step int) any {
	switch step {
	case 1:
		return &s.Identity
	case 2:
		return &s.Music
	case 3:
		return &s.Profile
	case 4:
		return &s.Rights
	case 5:
		return &s.Extras
	default:
		return nil
	}
}

// submissionField locates one wire field inside Submission.
type submissionField struct {
	name  string
	step  int
	index []int
	kind  reflect.Kind
}

var (
	fieldsOnce  sync.Once
	fieldByName map[string]submissionField
	fieldOrder  []submissionField
)

func submissionFields() (map[string]submissionField, []submissionField) {
	fieldsOnce.Do(func() {
		fieldByName = make(map[string]submissionField)
		root := reflect.TypeFor[Submission]()
		for step := 1; step <= root.NumField(); step++ {
			section := root.Field(step - 1)
			for j := range section.Type.NumField() {
				f := section.Type.Field(j)
				name := f.Tag.Get("form")
				if name == "" {
					continue
				}
				sf := submissionField{
					name:  name,
					step:  step,
					index: []int{step - 1, j},
					kind:  f.Type.Kind(),
				}
				fieldByName[name] = sf
				fieldOrder = append(fieldOrder, sf)
			}
		}
	})
	return fieldByName, fieldOrder
}

// SubmissionFieldNames returns every wire field name in step order.
func SubmissionFieldNames() []string {
	_, order := submissionFields()
	names := make([]string, len(order))
	for i, f := range order {
		names[i] = f.name
	}
	return names
}

// SubmissionFieldStep returns the step a wire field belongs to, or 0 when
// the field is unknown.
func SubmissionFieldStep(name string) int {
	byName, _ := submissionFields()
	return byName[name].step
}

// Set assigns a field by its wire name. Checkbox fields accept
// true/false/on/off/1/0/yes/no; an empty value clears them.
func (s *Submission) Set(name, value string) error {
	byName, _ := submissionFields()
	f, ok := byName[name]
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}

	v := reflect.ValueOf(s).Elem().FieldByIndex(f.index)
	switch f.kind {
	case reflect.Bool:
		b, err := ParseCheckbox(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		v.SetBool(b)
	default:
		v.SetString(value)
	}
	return nil
}

// Get returns a field's value in its wire form.
func (s *Submission) Get(name string) (string, bool) {
	byName, _ := submissionFields()
	f, ok := byName[name]
	if !ok {
		return "", false
	}
	return formValue(reflect.ValueOf(s).Elem().FieldByIndex(f.index)), true
}

// Flatten concatenates the five sections into one flat key/value record,
// the shape the form backend receives.
func (s *Submission) Flatten() url.Values {
	_, order := submissionFields()
	root := reflect.ValueOf(s).Elem()
	values := make(url.Values, len(order))
	for _, f := range order {
		values.Set(f.name, formValue(root.FieldByIndex(f.index)))
	}
	return values
}

// FilledFields returns the names of non-empty fields, sorted.
func (s *Submission) FilledFields() []string {
	var names []string
	for name, vals := range s.Flatten() {
		if len(vals) > 0 && vals[0] != "" && vals[0] != "false" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func formValue(v reflect.Value) string {
	if v.Kind() == reflect.Bool {
		return strconv.FormatBool(v.Bool())
	}
	return v.String()
}

// ParseCheckbox parses an HTML checkbox-style value.
func ParseCheckbox(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "off", "0", "no":
		return false, nil
	case "true", "on", "1", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("invalid checkbox value %q", value)
	}
}
