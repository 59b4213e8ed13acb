package user

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantErr string
	}{
		{name: "too short", pwd: "Ab3!", wantErr: pwdMinLenText},
		{name: "whitespace", pwd: "Ab3! Ab3!", wantErr: pwdNoSpaceText},
		{name: "all numeric", pwd: "12345678", wantErr: pwdNotAllNumText},
		{name: "no uppercase", pwd: "lolc@t123", wantErr: pwdComplexityText},
		{name: "no lowercase", pwd: "LOLC@T123", wantErr: pwdComplexityText},
		{name: "no digit", pwd: "LolC@tttt", wantErr: pwdComplexityText},
		{name: "no special", pwd: "LolCat123", wantErr: pwdComplexityText},
		{name: "similar to email", pwd: "Hero@test.cd1", attrs: []string{"Hero Kid", "hero@test.cd"}, wantErr: pwdAttrSimText},
		{name: "ok", pwd: "LolC@t123"},
		{name: "ok with attrs", pwd: "LolC@t123", attrs: []string{"Hero Kid", "hero@test.cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.pwd, tt.attrs...)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidatePassword() error = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
