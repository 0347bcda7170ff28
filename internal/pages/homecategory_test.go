package pages

import (
	"errors"
	"testing"
)

const homeCategoryContent = `<table><tr><td>Forum Home</td></tr></table>
<table>
<tr><td colspan="2">Forum</td></tr>
<tr><td colspan="2">Categories</td></tr>
<tr><td colspan="2"><b>General Discussion</b></td></tr>
<tr><td><img src="images/cat.gif"></td><td><a href="index.cfm?page=forum&forumID=4">Halo CE General</a><div class="SMALL">General discussion of Halo CE</div></td></tr>
<tr><td><img src="images/cat.gif"></td><td><img src="images/icon_lock.gif"><a href="index.cfm?page=forum&forumID=5">Archived News</a><div class="SMALL"></div></td></tr>
</table>`

func TestExtractHomeCategory(t *testing.T) {
	doc := parseFixture(t, fixturePage(homeCategoryContent))

	page, err := ExtractHomeCategory(doc, "index.cfm?page=home&categoryID=2", fixtureLocation(t))
	if err != nil {
		t.Fatalf("ExtractHomeCategory returned error: %v", err)
	}

	if page.Category.ID != 2 {
		t.Errorf("Category.ID = %d, want 2", page.Category.ID)
	}
	if page.Category.Name != "General Discussion" {
		t.Errorf("Category.Name = %q, want %q", page.Category.Name, "General Discussion")
	}
	if !page.Category.MirroredAt.Equal(fixtureMirroredAt(t)) {
		t.Errorf("Category.MirroredAt = %v, want %v", page.Category.MirroredAt, fixtureMirroredAt(t))
	}

	if len(page.Forums) != 2 {
		t.Fatalf("len(Forums) = %d, want 2", len(page.Forums))
	}

	first := page.Forums[0]
	if first.ID != 4 || first.Name != "Halo CE General" {
		t.Errorf("Forums[0] = %d %q, want 4 %q", first.ID, first.Name, "Halo CE General")
	}
	if first.Locked {
		t.Error("Forums[0].Locked = true, want false")
	}
	if first.Description != "General discussion of Halo CE" {
		t.Errorf("Forums[0].Description = %q", first.Description)
	}
	if first.SortIndex != 0 || first.CategoryID != 2 {
		t.Errorf("Forums[0] sort/category = %d/%d, want 0/2", first.SortIndex, first.CategoryID)
	}

	second := page.Forums[1]
	if second.ID != 5 || !second.Locked {
		t.Errorf("Forums[1] = %d locked=%v, want 5 locked=true", second.ID, second.Locked)
	}
	if second.Description != "" {
		t.Errorf("Forums[1].Description = %q, want empty", second.Description)
	}
	if second.SortIndex != 1 {
		t.Errorf("Forums[1].SortIndex = %d, want 1", second.SortIndex)
	}
}

func TestExtractHomeCategoryBadFilename(t *testing.T) {
	doc := parseFixture(t, fixturePage(homeCategoryContent))

	_, err := ExtractHomeCategory(doc, "index.cfm?page=home", fixtureLocation(t))
	if err == nil {
		t.Fatal("ExtractHomeCategory succeeded on a filename without a category ID")
	}
}

func TestExtractHomeCategoryMissingDescription(t *testing.T) {
	content := `<table><tr><td>Forum Home</td></tr></table>
<table>
<tr><td>Forum</td></tr>
<tr><td>Categories</td></tr>
<tr><td><b>General Discussion</b></td></tr>
<tr><td><img src="images/cat.gif"></td><td><a href="index.cfm?page=forum&forumID=4">Halo CE General</a></td></tr>
</table>`
	doc := parseFixture(t, fixturePage(content))

	_, err := ExtractHomeCategory(doc, "index.cfm?page=home&categoryID=2", fixtureLocation(t))
	if err == nil {
		t.Fatal("ExtractHomeCategory succeeded on a forum row without a description")
	}
	var structErr *StructureError
	if !errors.As(err, &structErr) {
		t.Errorf("error = %v, want *StructureError", err)
	}
}
