package items

// Credentials is a USER[:PASSWORD] argument.
type Credentials struct {
	Username    string
	Password    string
	HasPassword bool
}

// ParseCredentials splits arg on the first unescaped ":". Without one the
// whole argument is the username and no password is set.
func ParseCredentials(arg string) Credentials {
	split, err := SplitItem(arg, NewSeparatorSet(SepCredentials))
	if err != nil {
		return Credentials{Username: arg}
	}
	return Credentials{Username: split.Key, Password: split.Value, HasPassword: true}
}
