// Package items parses request item arguments of the form KEY<SEP>VALUE.
//
// Each argument is tokenized into literal runs and backslash-escaped
// characters, split on the earliest (and, at equal positions, longest)
// unescaped separator, and classified into one of four buckets:
//   - headers (KEY:VALUE)
//   - query params (KEY==VALUE)
//   - data fields (KEY=VALUE, KEY:=JSON, KEY=@FILE, KEY:=@FILE)
//   - file attachments (KEY@FILE)
//
// Referenced files are read once, synchronously, while the item is
// classified. The first failure aborts the whole parse.
package items
