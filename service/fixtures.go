package service

import (
	"fmt"
	"time"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/model"
)

const (
	CourtTravis     = "travis_county_court"
	CourtWilliamson = "williamson_county_court"
)

var DemoCounties = []model.County{
	{ID: "c1", Name: "Travis County"},
	{ID: "c2", Name: "Williamson County"},
}

// DemoCourts are the courts the demo data is spread across.
var DemoCourts = []model.Court{
	{ID: CourtTravis, Name: "Travis County Court", CountyID: "c1"},
	{ID: CourtWilliamson, Name: "Williamson County Court", CountyID: "c2"},
}

var DemoCaseTypes = []model.CaseType{
	{ID: model.CaseTypeEviction, Name: "Eviction"},
	{ID: 2, Name: "Civil"},
}

// DemoUsers returns one clerk per demo court, all sharing password.
func DemoUsers(password string) []config.User {
	return []config.User{
		{
			ID: "u1", Email: "travis_clerk@example.com", Password: password,
			FullName: "Alex Johnson", Role: "clerk",
			CourtID: CourtTravis, CourtName: "Travis County Court",
			CountyID: "c1", CountyName: "Travis County",
		},
		{
			ID: "u2", Email: "williamson_clerk@example.com", Password: password,
			FullName: "Sam Rodriguez", Role: "clerk",
			CourtID: CourtWilliamson, CourtName: "Williamson County Court",
			CountyID: "c2", CountyName: "Williamson County",
		},
	}
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// DemoBatches returns the seeded batch uploads.
func DemoBatches() []*model.BatchUpload {
	return []*model.BatchUpload{
		{ID: "b1", UploadedByUserID: "u1", CourtID: CourtTravis, UploadTimestamp: ts("2025-04-09T14:30:00Z"),
			Status: model.BatchComplete, TotalFiles: 5, ProcessedFiles: 5},
		{ID: "b2", UploadedByUserID: "u1", CourtID: CourtTravis, UploadTimestamp: ts("2025-04-08T10:15:00Z"),
			Status: model.BatchPartialComplete, TotalFiles: 3, ProcessedFiles: 2, FailedFiles: 1},
		{ID: "b3", UploadedByUserID: "u2", CourtID: CourtWilliamson, UploadTimestamp: ts("2025-04-09T09:45:00Z"),
			Status: model.BatchProcessing, TotalFiles: 4, ProcessedFiles: 2},
	}
}

// DemoCitations are the citation checks reported by the mock extractor.
func DemoCitations() []model.Citation {
	return []model.Citation{
		{ID: "cit1", Text: "Texas Property Code § 24.005", IsValid: true, Location: "Paragraph 2"},
		{ID: "cit2", Text: "Smith v. Jones, 123 S.W.3d 456 (Tex. App. 2019)", IsValid: true, Location: "Paragraph 3"},
		{ID: "cit3", Text: "Tex. R. Civ. P. 510.9", IsValid: false, Location: "Paragraph 4",
			Reason: "Rule number is incorrect. Should be 510.7 for continuances in eviction cases."},
	}
}

func pass(rule string) model.ComplianceFlag { return model.ComplianceFlag{Rule: rule, Pass: true} }

func fail(rule, msg string) model.ComplianceFlag {
	return model.ComplianceFlag{Rule: rule, Pass: false, Message: msg}
}

// DemoMotions returns the seeded motions in dashboard order.
func DemoMotions() []*model.Motion {
	travis := func(m *model.Motion) *model.Motion {
		m.CountyID, m.CourtID, m.UploadedByUserID = "c1", CourtTravis, "u1"
		return eviction(m)
	}
	williamson := func(m *model.Motion) *model.Motion {
		m.CountyID, m.CourtID, m.UploadedByUserID = "c2", CourtWilliamson, "u2"
		return eviction(m)
	}

	return []*model.Motion{
		travis(&model.Motion{
			ID: "m1", BatchID: "b1", CaseNumber: "25-EV-1001",
			MotionTypeID: 1, MotionType: "Motion for Continuance",
			FilerName: "John Doe", Reason: "Medical appointment conflict",
			Status:          model.StatusPending,
			ComplianceFlags: []model.ComplianceFlag{pass("Signature Presence"), pass("Required Fields")},
			ExtractedData: map[string]string{
				"caseNumber": "25-EV-1001", "filerName": "John Doe", "reason": "Medical appointment conflict",
				"originalDate": "April 15, 2025", "requestedDate": "After April 30, 2025",
			},
			AIConfidence: map[string]float64{
				"caseNumber": 0.95, "filerName": 0.92, "reason": 0.88, "originalDate": 0.9, "requestedDate": 0.85,
			},
			Summary: "Defendant John Doe files a Motion for Continuance for the hearing on April 15, 2025, " +
				"citing the need for additional time to gather evidence and a conflicting medical appointment. " +
				"This is their first continuance request, and the plaintiff does not oppose it. " +
				"They request rescheduling after April 30, 2025.",
			Citations: DemoCitations(),
			CreatedAt: ts("2025-04-09T14:35:00Z"), UpdatedAt: ts("2025-04-09T14:35:00Z"),
		}),
		travis(&model.Motion{
			ID: "m2", BatchID: "b1", CaseNumber: "25-EV-1002",
			MotionTypeID: 2, MotionType: "Motion to Dismiss",
			FilerName: "Jane Smith", Reason: "Lease violation claim is invalid",
			Status: model.StatusNeedsManualReview,
			ComplianceFlags: []model.ComplianceFlag{
				pass("Signature Presence"),
				fail("Proof of Service", "No proof of service attached or referenced in the document"),
			},
			ExtractedData: map[string]string{
				"caseNumber": "25-EV-1002", "filerName": "Jane Smith", "reason": "Lease violation claim is invalid",
			},
			AIConfidence: map[string]float64{"caseNumber": 0.96, "filerName": 0.75, "reason": 0.82},
			CreatedAt:    ts("2025-04-09T14:36:00Z"), UpdatedAt: ts("2025-04-09T14:36:00Z"),
		}),
		travis(&model.Motion{
			ID: "m3", BatchID: "b1", CaseNumber: "25-EV-1003",
			MotionTypeID: 3, MotionType: "Motion for Default Judgment",
			FilerName: "Landlord Properties LLC", Reason: "Tenant failed to appear at hearing",
			Status: model.StatusAccepted,
			ComplianceFlags: []model.ComplianceFlag{
				pass("Signature Presence"), pass("Required Fields"), pass("Proof of Service"),
			},
			ExtractedData: map[string]string{
				"caseNumber": "25-EV-1003", "filerName": "Landlord Properties LLC",
				"reason": "Tenant failed to appear at hearing", "hearingDate": "April 2, 2025",
			},
			AIConfidence: map[string]float64{"caseNumber": 0.98, "filerName": 0.94, "reason": 0.91, "hearingDate": 0.89},
			CreatedAt:    ts("2025-04-09T14:37:00Z"), UpdatedAt: ts("2025-04-09T15:10:00Z"),
		}),
		travis(&model.Motion{
			ID: "m4", BatchID: "b2", CaseNumber: "25-EV-1004",
			MotionTypeID: 4, MotionType: "Motion for Stay of Execution",
			FilerName: "Robert Johnson", Reason: "Seeking time to find new housing",
			Status: model.StatusRejected,
			ComplianceFlags: []model.ComplianceFlag{
				fail("Filing Fee", "No indication of filing fee payment"),
				fail("Required Fields", "Missing required information about judgment date"),
			},
			ExtractedData: map[string]string{
				"caseNumber": "25-EV-1004", "filerName": "Robert Johnson", "reason": "Seeking time to find new housing",
			},
			AIConfidence: map[string]float64{"caseNumber": 0.92, "filerName": 0.88, "reason": 0.85},
			CreatedAt:    ts("2025-04-08T10:20:00Z"), UpdatedAt: ts("2025-04-08T11:05:00Z"),
		}),
		travis(&model.Motion{
			ID: "m5", BatchID: "b2", CaseNumber: "25-EV-1005",
			MotionTypeID: 5, MotionType: "Motion to Set Aside Judgment",
			FilerName: "Maria Garcia", Reason: "Did not receive notice of hearing",
			Status: model.StatusFixRequested,
			ComplianceFlags: []model.ComplianceFlag{
				pass("Signature Presence"),
				fail("Supporting Evidence", "No supporting evidence for claim of lack of notice"),
			},
			ExtractedData: map[string]string{
				"caseNumber": "25-EV-1005", "filerName": "Maria Garcia",
				"reason": "Did not receive notice of hearing", "judgmentDate": "March 25, 2025",
			},
			AIConfidence: map[string]float64{"caseNumber": 0.94, "filerName": 0.91, "reason": 0.87, "judgmentDate": 0.82},
			CreatedAt:    ts("2025-04-08T10:22:00Z"), UpdatedAt: ts("2025-04-08T14:15:00Z"),
		}),
		williamson(&model.Motion{
			ID: "m6", BatchID: "b3", CaseNumber: "25-EV-2001",
			MotionTypeID: 1, MotionType: "Motion for Continuance",
			FilerName: "Thomas Wilson", Reason: "Attorney scheduling conflict",
			Status:          model.StatusPending,
			ComplianceFlags: []model.ComplianceFlag{pass("Signature Presence"), pass("Required Fields")},
			ExtractedData: map[string]string{
				"caseNumber": "25-EV-2001", "filerName": "Thomas Wilson", "reason": "Attorney scheduling conflict",
				"originalDate": "April 20, 2025", "requestedDate": "After May 5, 2025",
			},
			AIConfidence: map[string]float64{
				"caseNumber": 0.97, "filerName": 0.93, "reason": 0.9, "originalDate": 0.88, "requestedDate": 0.86,
			},
			CreatedAt: ts("2025-04-09T09:50:00Z"), UpdatedAt: ts("2025-04-09T09:50:00Z"),
		}),
		williamson(&model.Motion{
			ID: "m7", BatchID: "b3", CaseNumber: "25-EV-2002",
			MotionTypeID: 2, MotionType: "Motion to Dismiss",
			FilerName: "Sarah Brown", Reason: "Improper service of eviction notice",
			Status:          model.StatusAIError,
			ComplianceFlags: []model.ComplianceFlag{},
			ExtractedData:   map[string]string{"caseNumber": "25-EV-2002", "filerName": "Sarah Brown"},
			AIConfidence:    map[string]float64{"caseNumber": 0.65, "filerName": 0.6},
			CreatedAt:       ts("2025-04-09T09:52:00Z"), UpdatedAt: ts("2025-04-09T09:52:00Z"),
		}),
	}
}

func eviction(m *model.Motion) *model.Motion {
	m.CaseTypeID, m.CaseType = model.CaseTypeEviction, "Eviction"
	m.DocumentStoragePath = "/documents/" + m.ID + ".pdf"
	return m
}

// Seed loads the demo batches and motions.
func Seed(motions *MotionStore, batches *BatchStore) error {
	for _, b := range DemoBatches() {
		batches.Save(b)
	}
	for _, m := range DemoMotions() {
		if err := motions.Save(m); err != nil {
			return fmt.Errorf("failed to seed motion %s: %w", m.ID, err)
		}
	}
	return nil
}
