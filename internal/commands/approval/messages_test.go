package approvalcmd

import "testing"

func TestMessageValidation(t *testing.T) {
	cases := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{"start ok", StartWorkflowCommand{CourseID: "CSN", FacultyID: "PROF_1", RawContent: "# Networks"}, false},
		{"start missing faculty", StartWorkflowCommand{CourseID: "CSN", RawContent: "# Networks"}, true},
		{"start blank content", StartWorkflowCommand{CourseID: "CSN", FacultyID: "PROF_1", RawContent: "   "}, true},
		{"action approve", FacultyActionCommand{CourseID: "CSN", Action: "approve"}, false},
		{"action normalizes case", FacultyActionCommand{CourseID: "CSN", Action: " Confirm "}, false},
		{"action unknown", FacultyActionCommand{CourseID: "CSN", Action: "publish"}, true},
		{"edit without payload", FacultyActionCommand{CourseID: "CSN", Action: "edit"}, false},
		{"edit with payload", FacultyActionCommand{CourseID: "CSN", Action: "edit", Payload: map[string]any{"objectives": []any{}}}, false},
		{"complete ok", CompleteWorkflowCommand{CourseID: "CSN"}, false},
		{"complete blank course", CompleteWorkflowCommand{CourseID: " "}, true},
		{"plt ok", RequestPLTCommand{CourseID: "CSN", LearnerID: "R001"}, false},
		{"plt missing learner", RequestPLTCommand{CourseID: "CSN"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
