package util

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

func WriteJSONToFile[T any](value T, file string) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	return errors.Wrap(os.WriteFile(file, data, 0644), "write "+file)
}

type _CSVField struct {
	Index int
	Row   int
	Kind  reflect.Kind
}

func _CSVKind(kind reflect.Kind) reflect.Kind {
	switch kind {
	case reflect.Bool:
		return reflect.Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.Int
	case reflect.Float32, reflect.Float64:
		return reflect.Float64
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.Uint
	case reflect.String:
		return reflect.String
	}
	return reflect.Invalid
}

// Writes all rows to a csv file, the header is built from the `csv` struct tags of T.
func WriteCSVToFile[T any](rows []T, filename string, delimiter rune) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create "+filename)
	}
	defer file.Close()
	return errors.Wrap(WriteCSV(file, rows, delimiter), "write "+filename)
}

func WriteCSV[T any](out io.Writer, rows []T, delimiter rune) error {
	writer := csv.NewWriter(out)
	writer.Comma = delimiter

	var val T
	typ := reflect.TypeOf(val)
	header := NewList[string](typ.NumField())
	fields := NewList[_CSVField](typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("csv")
		if tag == "" {
			continue
		}
		kind := _CSVKind(field.Type.Kind())
		if kind == reflect.Invalid {
			continue
		}
		fields.Add(_CSVField{Index: i, Row: header.Length(), Kind: kind})
		header.Add(tag)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, header.Length())
	for _, row := range rows {
		v := reflect.ValueOf(row)
		for _, field := range fields {
			f := v.Field(field.Index)
			switch field.Kind {
			case reflect.Bool:
				record[field.Row] = strconv.FormatBool(f.Bool())
			case reflect.Int:
				record[field.Row] = strconv.FormatInt(f.Int(), 10)
			case reflect.Uint:
				record[field.Row] = strconv.FormatUint(f.Uint(), 10)
			case reflect.Float64:
				record[field.Row] = strconv.FormatFloat(f.Float(), 'f', -1, 64)
			case reflect.String:
				record[field.Row] = f.String()
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadCSVFromFile[T any](filename string, delimiter rune) func(yield func(T) bool) {
	return func(yield func(T) bool) {
		file, err := os.Open(filename)
		if err != nil {
			panic(err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.Comma = delimiter
		header, err := reader.Read()
		if err != nil {
			panic(err)
		}
		name_row_mapping := NewDict[string, int](10)
		for i, name := range header {
			name_row_mapping[name] = i
		}

		var val T
		typ := reflect.TypeOf(val)
		num_field := typ.NumField()
		fields := NewList[_CSVField](num_field)
		for i := 0; i < num_field; i++ {
			field := typ.Field(i)
			tag := field.Tag.Get("csv")
			if tag == "" {
				continue
			}
			if !name_row_mapping.ContainsKey(tag) {
				continue
			}
			kind := _CSVKind(field.Type.Kind())
			if kind == reflect.Invalid {
				continue
			}
			fields.Add(_CSVField{Index: i, Row: name_row_mapping[tag], Kind: kind})
		}
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				continue
			}
			t := reflect.New(typ).Elem()
			for _, field := range fields {
				value := record[field.Row]
				if value == "" {
					continue
				}
				f := t.Field(field.Index)
				switch field.Kind {
				case reflect.Bool:
					num, _ := strconv.ParseBool(value)
					f.SetBool(num)
				case reflect.Int:
					num, _ := strconv.ParseInt(value, 10, 64)
					f.SetInt(num)
				case reflect.Uint:
					num, _ := strconv.ParseUint(value, 10, 64)
					f.SetUint(num)
				case reflect.Float64:
					num, _ := strconv.ParseFloat(value, 64)
					f.SetFloat(num)
				case reflect.String:
					f.SetString(value)
				}
			}
			value := t.Interface().(T)
			if !yield(value) {
				break
			}
		}
	}
}
