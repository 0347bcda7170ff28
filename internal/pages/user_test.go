package pages

import (
	"errors"
	"testing"
	"time"
)

const userContent = `<table><tr><td>A Community Forum</td></tr></table>
<table><tr><td>Forum Home &gt; User Profile</td></tr></table>
<table>
<tr><td colspan="2">Viewing User Profile for: MosesofEgypt</td></tr>
<tr><td colspan="2">Contact</td></tr>
<tr><td><table>
<tr><td>Joined:</td><td>Sep 30, 2006 09:29 PM</td></tr>
<tr><td>Last Visit:</td><td>Today @ 11:07 AM</td></tr>
<tr><td>Location:</td><td>Michigan</td></tr>
<tr><td>Occupation:</td><td></td></tr>
<tr><td>Interests:</td><td>Modding</td></tr>
<tr><td>Your Age:</td><td></td></tr>
<tr><td>What Games do you play:</td><td>Halo CE</td></tr>
<tr><td>Avatar</td><td><img src="avatars/moses.gif">Accept no substitutes</td></tr>
</table></td></tr>
</table>`

func TestExtractUser(t *testing.T) {
	doc := parseFixture(t, fixturePage(userContent))
	loc := fixtureLocation(t)

	user, err := ExtractUser(doc, "index.cfm?page=userInfo&viewuserid=442", loc)
	if err != nil {
		t.Fatalf("ExtractUser returned error: %v", err)
	}

	if user.ID != 442 {
		t.Errorf("ID = %d, want 442", user.ID)
	}
	if user.Name != "MosesofEgypt" {
		t.Errorf("Name = %q, want %q", user.Name, "MosesofEgypt")
	}

	wantJoined := time.Date(2006, time.September, 30, 21, 29, 0, 0, loc)
	if !user.JoinedAt.Equal(wantJoined) {
		t.Errorf("JoinedAt = %v, want %v", user.JoinedAt, wantJoined)
	}
	// "Today" resolves against the page's own render date.
	wantVisit := time.Date(2023, time.January, 18, 11, 7, 0, 0, loc)
	if !user.LastVisitAt.Equal(wantVisit) {
		t.Errorf("LastVisitAt = %v, want %v", user.LastVisitAt, wantVisit)
	}

	if user.Avatar == nil || *user.Avatar != "moses.gif" {
		t.Errorf("Avatar = %v, want moses.gif with avatars/ stripped", user.Avatar)
	}
	if user.Quote == nil || *user.Quote != "Accept no substitutes" {
		t.Errorf("Quote = %v, want %q", user.Quote, "Accept no substitutes")
	}
	if user.Special != nil {
		t.Errorf("Special = %q, want nil (only post pages carry it)", *user.Special)
	}

	if user.Location == nil || *user.Location != "Michigan" {
		t.Errorf("Location = %v, want Michigan", user.Location)
	}
	if user.Occupation != nil {
		t.Errorf("Occupation = %q, want nil for an empty field", *user.Occupation)
	}
	if user.Interests == nil || *user.Interests != "Modding" {
		t.Errorf("Interests = %v, want Modding", user.Interests)
	}
	if user.Age != nil {
		t.Errorf("Age = %q, want nil for an empty field", *user.Age)
	}
	if user.GamesPlayed == nil || *user.GamesPlayed != "Halo CE" {
		t.Errorf("GamesPlayed = %v, want Halo CE", user.GamesPlayed)
	}
	if !user.MirroredAt.Equal(fixtureMirroredAt(t)) {
		t.Errorf("MirroredAt = %v, want %v", user.MirroredAt, fixtureMirroredAt(t))
	}
}

// The avatar row is absent entirely for users without one, even if they
// have a quote. Both fields must come back nil.
func TestExtractUserNoAvatarRow(t *testing.T) {
	content := `<table><tr><td>A Community Forum</td></tr></table>
<table><tr><td>Forum Home &gt; User Profile</td></tr></table>
<table>
<tr><td colspan="2">Viewing User Profile for: lurker</td></tr>
<tr><td colspan="2">Contact</td></tr>
<tr><td><table>
<tr><td>Joined:</td><td>Sep 30, 2006 09:29 PM</td></tr>
<tr><td>Last Visit:</td><td>Sep 30, 2006 09:29 PM</td></tr>
</table></td></tr>
</table>`
	doc := parseFixture(t, fixturePage(content))

	user, err := ExtractUser(doc, "index.cfm?page=userInfo&viewuserid=7", fixtureLocation(t))
	if err != nil {
		t.Fatalf("ExtractUser returned error: %v", err)
	}
	if user.Avatar != nil || user.Quote != nil {
		t.Errorf("Avatar/Quote = %v/%v, want nil/nil", user.Avatar, user.Quote)
	}
	if user.Location != nil {
		t.Errorf("Location = %v, want nil when the row is absent", user.Location)
	}
}

func TestExtractUserStubs(t *testing.T) {
	// User ID 0 is the mirror's placeholder for a missing profile.
	doc := parseFixture(t, fixturePage(userContent))
	if _, err := ExtractUser(doc, "index.cfm?page=userInfo&viewuserid=0", fixtureLocation(t)); !errors.Is(err, ErrStubPage) {
		t.Errorf("viewuserid=0 error = %v, want ErrStubPage", err)
	}

	// A profile table without a user name is a stub for a deleted user.
	content := `<table><tr><td>A Community Forum</td></tr></table>
<table><tr><td>Forum Home &gt; User Profile</td></tr></table>
<table>
<tr><td colspan="2">Viewing User Profile for:</td></tr>
<tr><td colspan="2">Contact</td></tr>
<tr><td><table><tr><td>Joined:</td><td></td></tr></table></td></tr>
</table>`
	doc = parseFixture(t, fixturePage(content))
	if _, err := ExtractUser(doc, "index.cfm?page=userInfo&viewuserid=99", fixtureLocation(t)); !errors.Is(err, ErrStubPage) {
		t.Errorf("nameless profile error = %v, want ErrStubPage", err)
	}
}
