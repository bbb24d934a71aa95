package core

// category is one taxonomy entry with its subcategories in display order.
type category struct {
	name          string
	subcategories []string
}

var taxonomy = []category{
	{"Φρέσκα τρόφιμα", []string{"Φρούτα", "Λαχανικά", "Ψάρια", "Κρέατα"}},
	{"Κατεψυγμένα τρόφιμα", []string{"Κατεψυγμένα λαχανικά", "Κατεψυγμένα κρέατα", "Κατεψυγμένες πίτσες", "Κατεψυγμένα γεύματα"}},
	{"Προϊόντα ψυγείου", []string{"Τυριά", "Γιαούρτια", "Γάλα", "Βούτυρο"}},
	{"Αλλαντικά", []string{"Ζαμπόν", "Σαλάμι", "Μπέικον"}},
	{"Αλκοολούχα ποτά", []string{"Μπύρα", "Κρασί", "Ούζο", "Τσίπουρο"}},
	{"Μη αλκοολούχα ποτά", []string{"Χυμοί", "Αναψυκτικά", "Νερό", "Ενεργειακά ποτά"}},
	{"Καθαριστικά για το σπίτι", []string{"Καθαριστικά για το πάτωμα", "Καθαριστικά για τα τζάμια", "Καθαριστικά κουζίνας"}},
	{"Απορρυπαντικά ρούχων", []string{"Σκόνες πλυντηρίου", "Υγρά πλυντηρίου", "Μαλακτικά"}},
	{"Καλλυντικά", []string{"Κρέμες προσώπου", "Μακιγιάζ", "Λοσιόν σώματος"}},
	{"Προϊόντα στοματικής υγιεινής", []string{"Οδοντόκρεμες", "Οδοντόβουρτσες", "Στοματικά διαλύματα"}},
	{"Πάνες", []string{"Πάνες για μωρά", "Πάνες ενηλίκων"}},
	{"Δημητριακά", []string{"Νιφάδες καλαμποκιού", "Μούσλι", "Βρώμη"}},
	{"Ζυμαρικά", []string{"Μακαρόνια", "Κριθαράκι", "Ταλιατέλες"}},
	{"Σνακ", []string{"Πατατάκια", "Κράκερς", "Μπάρες δημητριακών"}},
	{"Έλαια", []string{"Ελαιόλαδο", "Ηλιέλαιο", "Σογιέλαιο"}},
	{"Κονσέρβες", []string{"Κονσέρβες ψαριών", "Κονσέρβες λαχανικών", "Κονσέρβες φρούτων"}},
	{"Χαρτικά", []string{"Χαρτί υγείας", "Χαρτοπετσέτες", "Χαρτομάντηλα"}},
}

var taxonomyIndex = func() map[string]int {
	idx := make(map[string]int, len(taxonomy))
	for i, c := range taxonomy {
		idx[c.name] = i
	}
	return idx
}()

// Categories returns the fixed category list in display order.
func Categories() []string {
	out := make([]string, len(taxonomy))
	for i, c := range taxonomy {
		out[i] = c.name
	}
	return out
}

// SubCategories returns the subcategories of name. An unknown category
// yields an empty list.
func SubCategories(name string) []string {
	i, ok := taxonomyIndex[name]
	if !ok {
		return []string{}
	}
	return append([]string(nil), taxonomy[i].subcategories...)
}

// ValidCategory reports whether name is part of the taxonomy.
func ValidCategory(name string) bool {
	_, ok := taxonomyIndex[name]
	return ok
}

// ValidSubcategory reports whether sub belongs to category.
func ValidSubcategory(category, sub string) bool {
	i, ok := taxonomyIndex[category]
	if !ok {
		return false
	}
	for _, s := range taxonomy[i].subcategories {
		if s == sub {
			return true
		}
	}
	return false
}

// validateTaxonomy returns the matching sentinel for an invalid pair.
func validateTaxonomy(category, sub string) error {
	if !ValidCategory(category) {
		return ErrUnknownCategory
	}
	if !ValidSubcategory(category, sub) {
		return ErrUnknownSubcategory
	}
	return nil
}
