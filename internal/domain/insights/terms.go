package insights

// Static classification tables. These are process-wide constants loaded
// once; nothing mutates them after init.

// chronicConditionTerms marks a problem as part of the chronic burden when
// any coded display or free text contains one of these.
var chronicConditionTerms = []string{
	"chronic",
	"diabetes",
	"hypertension",
	"heart failure",
	"chf",
	"copd",
	"emphysema",
	"asthma",
	"chronic kidney",
	"ckd",
	"esrd",
	"end stage renal",
	"atrial fibrillation",
	"afib",
	"coronary artery",
	"cad",
	"ischemic heart",
	"hyperlipidemia",
	"osteoporosis",
	"cirrhosis",
	"hepatitis c",
	"hiv",
	"dementia",
	"alzheimer",
	"parkinson",
	"multiple sclerosis",
	"epilepsy",
	"rheumatoid arthritis",
	"lupus",
	"hypothyroid",
	"obesity",
	"sleep apnea",
	"depression",
	"bipolar",
	"schizophrenia",
}

// chronicMedicationTerms marks a medication as chronic-disease therapy.
var chronicMedicationTerms = []string{
	"insulin",
	"metformin",
	"glipizide",
	"glyburide",
	"sitagliptin",
	"empagliflozin",
	"liraglutide",
	"semaglutide",
	"statin",
	"atorvastatin",
	"rosuvastatin",
	"simvastatin",
	"pravastatin",
	"lisinopril",
	"enalapril",
	"ramipril",
	"losartan",
	"valsartan",
	"olmesartan",
	"amlodipine",
	"metoprolol",
	"carvedilol",
	"atenolol",
	"furosemide",
	"hydrochlorothiazide",
	"spironolactone",
	"warfarin",
	"apixaban",
	"rivaroxaban",
	"dabigatran",
	"clopidogrel",
	"albuterol",
	"fluticasone",
	"budesonide",
	"tiotropium",
	"salmeterol",
	"montelukast",
	"inhaler",
	"levothyroxine",
	"sertraline",
	"fluoxetine",
	"escitalopram",
	"citalopram",
	"paroxetine",
	"venlafaxine",
	"duloxetine",
	"bupropion",
	"gabapentin",
	"prednisone",
	"methotrexate",
	"omeprazole",
	"pantoprazole",
	"allopurinol",
	"donepezil",
	"memantine",
}

// vitalLOINCCodes is the canonical set of vital-sign observation codes.
var vitalLOINCCodes = map[string]bool{
	"85354-9": true, // blood pressure panel
	"8480-6":  true, // systolic blood pressure
	"8462-4":  true, // diastolic blood pressure
	"8867-4":  true, // heart rate
	"8310-5":  true, // body temperature
	"9279-1":  true, // respiratory rate
	"59408-5": true, // oxygen saturation (pulse ox)
	"2708-6":  true, // oxygen saturation (arterial)
	"29463-7": true, // body weight
	"8302-2":  true, // body height
	"39156-5": true, // body mass index
}

// vitalKeywords matches vital-sign display text when no code is usable.
var vitalKeywords = []string{
	"blood pressure",
	"systolic",
	"diastolic",
	"heart rate",
	"pulse",
	"temperature",
	"respiratory rate",
	"respiration",
	"oxygen saturation",
	"spo2",
	"body weight",
	"body height",
	"body mass index",
	"bmi",
}

// socialHistoryTerms classify social-history observations by code/text.
var socialHistoryTerms = []string{"smok", "tobacco", "alcohol"}

// mentalStatusTerms classify mental-status observations by text.
var mentalStatusTerms = []string{"mental", "depression", "anxiety"}

// phq9Terms detect PHQ-9 questionnaire observations (LOINC 44261-6).
var phq9Terms = []string{"44261-6", "phq-9", "phq 9"}

// abnormalInterpretations maps HL7 interpretation codes to display flags.
var abnormalInterpretations = map[string]string{
	"H":    "High",
	"HH":   "High",
	"HX":   "High",
	"L":    "Low",
	"LL":   "Low",
	"LX":   "Low",
	"A":    "Abnormal",
	"ABN":  "Abnormal",
	"CRIT": "Critical",
	"AA":   "Critical",
}

// VitalRange bounds a canonical reference range for a vital-sign code.
type VitalRange struct {
	Low  float64
	High float64
	Unit string
}

// DefaultVitalRanges holds approximate canonical reference ranges, keyed by
// LOINC code. They are consulted only when the record itself carries no
// explicit reference range, and are kept as data so the thresholds can be
// corrected without touching extraction logic.
var DefaultVitalRanges = map[string]VitalRange{
	"8480-6":  {Low: 90, High: 140, Unit: "mmHg"},     // systolic BP
	"8462-4":  {Low: 60, High: 90, Unit: "mmHg"},      // diastolic BP
	"8867-4":  {Low: 50, High: 100, Unit: "/min"},     // heart rate
	"8310-5":  {Low: 36.1, High: 38.0, Unit: "Cel"},   // temperature
	"9279-1":  {Low: 12, High: 20, Unit: "/min"},      // respiratory rate
	"59408-5": {Low: 92, High: 100, Unit: "%"},        // SpO2
	"2708-6":  {Low: 92, High: 100, Unit: "%"},        // SaO2
	"39156-5": {Low: 18.5, High: 30, Unit: "kg/m2"},   // BMI
}

// unitSynonyms maps common observed unit spellings (normalized) onto the
// canonical unit a DefaultVitalRanges entry carries.
var unitSynonyms = map[string]string{
	"bpm":         "/min",
	"beats/min":   "/min",
	"breaths/min": "/min",
	"percent":     "%",
	"c":           "cel",
}

// severeAllergyTerms flag a criticality or reaction severity as severe.
var severeAllergyTerms = []string{"high", "severe"}

// Encounter class markers for acute care.
var (
	edClassTerms        = []string{"emer"}
	inpatientClassTerms = []string{"imp", "inpat"}
)
